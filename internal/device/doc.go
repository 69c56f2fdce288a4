// Package device is the HTTP transport for the router's web/CGI interface.
//
// Client.Request(ctx, endpoint, fields) performs a basic-authenticated
// form-encoded POST with the device session token (`_http_id`) always first
// in the body. Client.RunCommand(ctx, cmd) layers the device's remote-shell
// CGI (shell.cgi with action=execute) on top of Request.
//
// Failures (network errors, non-2xx statuses, auth rejections) surface as
// *TransportError. The client holds no mutable state after construction and
// may be shared across concurrent collectors.
package device
