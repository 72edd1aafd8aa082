// Package services defines the [Service] interface for music streaming platforms and implements it for Spotify, YouTube and Deezer.
//
// # Service Interface
//
// All platforms implement a common abstraction covering the reads needed for reconciliation
// (liked tracks, playlists, playlist tracks), catalog search ([Searcher]) and the additive writes
// used when applying proposals (like, create playlist, add to playlist).
//
// Reads return typed records ([models.SpotifyTrack], [models.YouTubeVideo], [models.DeezerTrack])
// so identity resolution can apply platform specific rules.
//
// # Spotify Implementation
//
// [SpotifyService] wraps github.com/zmb3/spotify/v2 and uses OAuth2 with automatic token refresh.
// Search uses "isrc:" and "track: artist:" queries.
//
// # YouTube Implementation
//
// [YouTubeService] wraps the YouTube Data API v3 client. Liked songs are the items of the
// channel's "likes" playlist. There is no ISRC search, so [YouTubeService.SearchISRC] returns
// [shared.ErrUnsupported] and lookups fall back to text search in the music category.
//
// # Deezer Implementation
//
// [DeezerService] talks to the REST API directly with an access token passed as a query parameter.
// Errors reported in 200 responses are mapped to shared sentinels.
//
// # OAuth Service Extension
//
// The [OAuthService] interface extends Service for OAuth providers.
//
// Refreshed tokens are reported through [TokenCallback] so callers can persist them.
//
// # Rate Limiting
//
// Every adapter sends requests through a golang.org/x/time/rate limiter, configurable with [WithRateLimit].
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token expired, reauthorization needed
//   - [shared.ErrServiceUnavailable] : rate limited or server error
//   - [shared.ErrTrackNotFound] : search returned nothing
//   - [shared.ErrAPIRequest] : any other request failure
package services
