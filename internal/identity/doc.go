// Package identity maps heterogeneous platform track records onto comparable identities.
//
// # Normalization
//
// [Normalize] turns a display string into a canonical comparison string:
// lowercase, bracketed annotations removed, accents folded to ASCII, English
// articles dropped, punctuation stripped and whitespace collapsed. It is pure and
// a fixed point: Normalize(Normalize(x)) == Normalize(x).
//
// # Identity keys
//
// A [Key] is either an ISRC key or a normalized (title, artist) key. ISRC keys are
// authoritative; the two variants never unify, even when they describe the same
// recording.
//
// # Resolver
//
// [Resolver] extracts title, artist and ISRC from a [models.RawTrack]:
//   - Spotify: name, first artist, external_ids.isrc
//   - Deezer: title, artist.name, isrc
//   - YouTube: parsed from the video title and channel title, never an ISRC
//
// Records without an ISRC and without both a title and an artist are not
// identifiable and are dropped by callers.
package identity
