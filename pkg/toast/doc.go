// Package toast keeps the list of transient notifications ("toasts") an
// application is showing.
//
// A Store holds the active toasts in insertion order. Creating a toast
// merges the caller's options onto the store defaults, appends the record
// and arms a removal timer for its duration. A duration of zero makes the
// toast sticky: it stays until it is dismissed, cleared, or updated with a
// non-zero duration.
//
// Rendering is not done here. A renderer subscribes to the store and draws
// whatever list it is handed:
//
//	store := toast.New()
//	stop := store.Subscribe(func(ch toast.Change) {
//	    render(ch.Toasts)
//	})
//	defer stop()
//
//	store.Success(toast.Text("Project saved"))
//	id := store.Warning(toast.Text("Disk almost full"), toast.Sticky())
//	store.Dismiss(id)
//
// # Removal timers
//
// Every toast has at most one pending timer. Update, Dismiss and Clear
// cancel it, so a toast updated to a zero duration is never removed by a
// timer armed before the update.
//
// # Promises
//
// Promise tracks a long running operation with a single toast that starts
// as a sticky loading toast and becomes a success or error toast when the
// operation returns. Failure is reported in the returned Result, not as an
// error return:
//
//	res := toast.Promise(ctx, store, deleteProject, toast.PromiseMessages[struct{}]{
//	    Loading: toast.Text("Deleting..."),
//	    Success: toast.Literal[struct{}](toast.Text("Project deleted")),
//	    Error:   toast.Mapped(func(err error) toast.Message { return toast.Text(err.Error()) }),
//	})
//
// # Vango clients
//
// Since Vango uses persistent WebSocket connections, a session can mirror
// the store to the browser with the generic ctx.Emit() mechanism:
//
//	stop := toast.Forward(store, ctx)
//
//	// user/app.js
//	window.addEventListener("vango:toast", (e) => {
//	    const { action, id, level, message } = e.detail;
//	    ...
//	});
package toast
