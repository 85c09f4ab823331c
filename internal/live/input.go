package live

import (
	"encoding/json"

	"github.com/EvegeniyNekrasov/Nexo/internal/input"
)

func (h *Hub) handleInput(sender *Client, msg *Message) {
	if sender.Role != RoleEditor {
		sender.SendError("viewers cannot edit")
		return
	}

	var ev input.Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		h.logger.Warn("invalid input payload", "error", err, "client", sender.ClientID)
		sender.SendError("invalid input payload")
		return
	}

	room := sender.room
	if ev.Type == input.EventResize {
		room.setViewport(ev.Width, ev.Height)
	}
	if err := room.session.Submit(ev); err != nil {
		h.logger.Debug("submit input", "error", err, "client", sender.ClientID)
		sender.SendError(err.Error())
	}
}
