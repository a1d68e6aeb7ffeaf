// Package salesapi implements the session.Backend interface against the
// field-sales REST backend.
//
// Every response is enveloped as {meta:{code,status,message}, data:...}. A
// meta code other than 200 becomes a *Error carrying the backend's message
// verbatim; transport failures are wrapped with ErrRequestFailed. Responses
// classified as authorization failures (HTTP 401 or meta code 401) invoke the
// auto-logout bridge before the error propagates, except on the logout
// request itself, which is exempt to keep the bridge from re-entering.
//
// Endpoints:
//
//	POST /user/login       {version, username, password, notif_id}
//	POST /logout           (bearer header, best-effort)
//	GET  /user             (bearer header)
//	POST /user/send-otp    {phone}
//	POST /user/verify-otp  {phone, otp, notif_id}
package salesapi
