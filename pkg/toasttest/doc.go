// Package toasttest provides testing helpers for code that shows toasts.
//
// # Manual Clock
//
// Removal timers run on a Clock. Replace the system clock with a manual
// one to control expiry:
//
//	clock := toasttest.NewClock()
//	store := toast.New(toast.WithClock(clock))
//
//	id := store.Info(toast.Text("hello"))
//	clock.Advance(5 * time.Second)
//	// the toast is gone
//
// # Recording Changes
//
// A Recorder subscribes to a store and keeps every change it sees:
//
//	rec := toasttest.Record(store)
//	defer rec.Stop()
//	store.Success(toast.Text("saved"))
//	rec.ExpectKinds(t, toast.ChangeCreated)
//
// # Emitters
//
// Emitter captures events sent through toast.Forward, the way a Vango
// session context would dispatch them to the browser.
package toasttest
