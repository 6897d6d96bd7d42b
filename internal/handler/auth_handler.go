/*
Package handler provides the HTTP handlers and routing of the mocrs API.
*/
package handler

import (
	"errors"
	"net/http"

	"mocrs/internal/app/db"
	"mocrs/internal/app/user"
	"mocrs/internal/pkg/auth/meeting"
	"mocrs/internal/pkg/auth/password"
	"mocrs/internal/pkg/errs"
	"mocrs/internal/pkg/logx"
	"mocrs/internal/pkg/metrics"
	"mocrs/internal/pkg/req"
	"mocrs/internal/pkg/resp"
)

type credentialsInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerInput struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type meetingTokenInput struct {
	User *meeting.Requester `json:"user"`
}

// authenticate checks the credentials in the request body and returns the matching user.
func authenticate(deps *AppDeps, w http.ResponseWriter, r *http.Request) (*user.User, *errs.CustomError) {
	var input credentialsInput
	if customErr := req.BindJSON(w, r, &input); customErr != nil {
		return nil, customErr
	}
	if input.Username == "" || input.Password == "" {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	creds, err := deps.Users.GetCredentials(r.Context(), input.Username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			logx.Ctx(r.Context()).Warn().Str("username", input.Username).Msg("Login for unknown user")
			return nil, errs.NewError(errs.ErrInvalidCredentials)
		}
		logx.Ctx(r.Context()).Error().Err(err).Msg("Credential lookup failed")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	if !password.Verify(creds.PasswordHash, input.Password) {
		logx.Ctx(r.Context()).Warn().Str("username", input.Username).Msg("Login password mismatch")
		return nil, errs.NewError(errs.ErrInvalidCredentials)
	}

	return &creds.User, nil
}

// issueSession signs a session token for u.
func issueSession(deps *AppDeps, r *http.Request, u *user.User) (string, *errs.CustomError) {
	token, err := deps.Codec.IssueSession(u.Username, u.IsAdmin)
	if err != nil {
		logx.Ctx(r.Context()).Error().Err(err).Str("username", u.Username).Msg("Session token signing failed")
		return "", errs.NewError(errs.ErrUnknown)
	}
	return token, nil
}

// HandleToken exchanges a username and password for a session token.
func HandleToken(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, customErr := authenticate(deps, w, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token, customErr := issueSession(deps, r, u)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"token": token})
	}
}

// HandleLogin is HandleToken that also returns the user record.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, customErr := authenticate(deps, w, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token, customErr := issueSession(deps, r, u)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		logx.Ctx(r.Context()).Info().Str("username", u.Username).Msg("User logged in")
		resp.RespondSuccess(w, r, map[string]any{"user": u, "token": token})
	}
}

// createUser validates, hashes and stores in, answering 201 with the user and a session token.
func createUser(deps *AppDeps, w http.ResponseWriter, r *http.Request, in user.NewUser) {
	if customErr := in.Validate(); customErr != nil {
		resp.RespondError(w, r, customErr)
		return
	}

	hash, err := password.Hash(in.Password, deps.Config.BcryptCost)
	if err != nil {
		if password.IsTooLong(err) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
		return
	}

	created, err := deps.Users.Create(r.Context(), in, hash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			logx.Ctx(r.Context()).Warn().Str("username", in.Username).Msg("Registration conflict: username already exists")
			resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists, in.Username))
			return
		}
		respondStoreError(w, r, err, errs.NewError(errs.ErrUnknown))
		return
	}

	token, customErr := issueSession(deps, r, created)
	if customErr != nil {
		resp.RespondError(w, r, customErr)
		return
	}

	logx.Ctx(r.Context()).Info().Str("username", created.Username).Bool("is_admin", created.IsAdmin).Msg("User created")
	resp.RespondCreated(w, r, map[string]any{"user": created, "token": token})
}

// HandleRegister signs up a new, never-admin account.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input registerInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		createUser(deps, w, r, user.NewUser{
			Username:  input.Username,
			Password:  input.Password,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Email:     input.Email,
		})
	}
}

// HandleMeetingToken mints a token for the embedded meeting widget.
// Without an embedded session token the caller joins as the guest participant.
func HandleMeetingToken(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input meetingTokenInput
		if customErr := req.BindJSONLoose(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token, claims, err := deps.Minter.Mint(input.User)
		if err != nil {
			if errors.Is(err, meeting.ErrInvalidToken) {
				deps.Metrics.MeetingToken(metrics.MeetingRejected)
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidMeetingToken))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		outcome := metrics.MeetingGuest
		if claims.Moderator {
			outcome = metrics.MeetingModerator
		}
		deps.Metrics.MeetingToken(outcome)

		resp.RespondSuccess(w, r, map[string]any{"token": token})
	}
}
