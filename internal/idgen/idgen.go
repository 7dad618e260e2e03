// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
// Ticket ids carry the creation date by convention (tk-20260826-x7Hq2w);
// nothing downstream parses the date, it exists for operators reading keys.
package idgen

import (
	"fmt"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// TicketPrefix is prepended to every generated ticket ID.
var TicketPrefix = "tk"

// NotePrefix is prepended to every generated note ID.
var NotePrefix = "nt"

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding prefix and date).
var Length = 6

// Ticket returns a new unique ticket ID.
func Ticket(now time.Time) (string, error) {
	return generate(TicketPrefix, now)
}

// Note returns a new unique note ID.
func Note(now time.Time) (string, error) {
	return generate(NotePrefix, now)
}

func generate(prefix string, now time.Time) (string, error) {
	suffix, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), suffix), nil
}
