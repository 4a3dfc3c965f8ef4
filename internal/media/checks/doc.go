// Package checks applies the upload acceptance policy: container extension,
// size bounds, required H.264 video codec, audio presence, and resolution
// limits. Rejections are typed errors carrying a display-ready reason.
package checks
