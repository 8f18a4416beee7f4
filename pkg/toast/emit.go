package toast

// EventName is the event name dispatched for toast changes.
// Client-side code should listen for this event.
const EventName = "vango:toast"

// Emitter dispatches a custom event to a client. A Vango server.Ctx
// satisfies it.
type Emitter interface {
	Emit(name string, data any)
}

// Forward emits an EventName event on em for every change of s until the
// returned stop function is called.
//
// The client receives a CustomEvent with:
//   - event.type = "vango:toast"
//   - event.detail = { action: "created|updated|dismissed|expired|cleared", id: 3, level: "success", message: "..." }
func Forward(s *Store, em Emitter) (stop func()) {
	return s.Subscribe(func(ch Change) {
		em.Emit(EventName, Payload(ch))
	})
}

// Payload builds the event detail for a change.
func Payload(ch Change) map[string]any {
	if ch.Kind == ChangeCleared {
		ids := make([]int, len(ch.Removed))
		for i, t := range ch.Removed {
			ids[i] = t.ID
		}
		return map[string]any{
			"action": string(ch.Kind),
			"seq":    ch.Seq,
			"ids":    ids,
		}
	}

	t := ch.Toast
	data := map[string]any{
		"action": string(ch.Kind),
		"seq":    ch.Seq,
		"id":     t.ID,
		"level":  string(t.Type),
	}
	if ch.Kind.Removal() {
		return data
	}

	if t.Message.IsText() {
		data["message"] = t.Message.Text()
	} else {
		data["component"] = t.Message.Handle()
	}
	data["position"] = string(t.Options.Position)
	data["duration"] = t.Options.Duration.Milliseconds()
	data["dismissOnClick"] = t.Options.DismissOnClick
	if !t.Options.Icon.IsZero() {
		data["icon"] = t.Options.Icon.String()
	}
	if len(t.Options.Props) > 0 {
		data["props"] = t.Options.Props
	}
	return data
}
