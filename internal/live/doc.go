// Package live subscribes to the device dashboard's push channel.
//
// The server sends JSON envelopes {"event": name, "data": payload} over a WebSocket:
//   - devices_list : the full ordered device list, applied as a snapshot
//   - device_status_update : {"device_id", "status"}, applied as a single-row delta
//
// [Channel.Run] decodes each frame and hands it to a [Sink]. Unknown events and
// malformed payloads are logged and skipped; the connection stays open.
// There is no automatic reconnect.
package live
