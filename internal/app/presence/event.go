/*
Package presence pushes live room occupancy to websocket subscribers.

A Hub owns one Channel per room that currently has subscribers. Room handlers publish
the new participant count after a join or leave and every subscriber of that room
receives it as a JSON text frame.
*/
package presence

// EventParticipants is the only event type sent to subscribers.
const EventParticipants = "participants"

// Event is the JSON frame written to subscribers.
type Event struct {
	Type         string `json:"type"`
	RoomID       string `json:"roomId"`
	Participants int    `json:"participants"`
}
