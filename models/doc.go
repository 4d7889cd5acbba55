// Package models defines the DeepSeek chat-completions wire types.
//
// Request types carry their own validation (ranges for temperature,
// top_p, penalties, n and max_tokens); response types expose helpers for
// the first choice's content and reasoning trace.
package models
