// Package server runs the short-lived HTTP server that receives OAuth2 callbacks during "auth login".
//
// # Router
//
// [BasicRouter] implements [Router] on top of [http.ServeMux]. [Middleware] is applied so that the first
// one added runs outermost; [Logging] records each request without its query string.
//
// # OAuth Callback Handler
//
// [OAuthHandler] serves /callback/<platform>. It validates the state parameter, exchanges the code through
// the platform adapter and publishes a single [OAuthResult]. [CallbackServer] binds the listener before the
// browser is opened and shuts down once a result arrives or the context ends.
package server
