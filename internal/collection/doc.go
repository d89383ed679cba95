// Package collection keeps a client-local, ordered replica of a server collection
// (links or devices) and reconciles it with the server.
//
// A [Collection] owns the slice; nothing else mutates it. Every change happens
// inside one locked turn and is followed by exactly one [Observer] call:
//
//   - [Collection.Load] / [Collection.Replace] : wholesale replace, then Render
//   - [Collection.Create], [Collection.Update], [Collection.Delete] : server first, then a fresh Load.
//     A failure notifies and leaves the replica untouched.
//   - drag gestures ([Collection.DragStart], [Collection.DragOver], [Collection.Drop],
//     [Collection.DragEnd]) reorder locally before [Collection.Persist] saves the order
//   - [Collection.ApplyDelta] : in-place change of one item, then Patch for that row only
//
// Network calls never hold the lock, so a slow reload and a live delta interleave
// field by field; the response that arrives last wins.
//
// UI layers route input through [Collection.Dispatch] with the [Command] types.
package collection
