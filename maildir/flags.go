package maildir

import (
	"strings"

	"github.com/emersion/go-imap"
	gomaildir "github.com/emersion/go-maildir"
)

// Flags is a set of message status flags encoded in the info part of a
// maildir filename.
type Flags uint8

// Message flags. New flags must also be added to flagLetters.
const (
	FlagSeen Flags = 1 << iota
	FlagReplied
	FlagFlagged
	FlagDeleted
	FlagDraft
	FlagPassed
)

// IMAPFlags is the set of flags that have an IMAP system flag name.
const IMAPFlags = FlagSeen | FlagReplied | FlagFlagged | FlagDeleted | FlagDraft

// flagLetters lists every flag in canonical (ASCII) letter order.
var flagLetters = [...]struct {
	flag   Flags
	letter byte
}{
	{FlagDraft, 'D'},
	{FlagFlagged, 'F'},
	{FlagPassed, 'P'},
	{FlagReplied, 'R'},
	{FlagSeen, 'S'},
	{FlagDeleted, 'T'},
}

// Has reports whether all flags in other are set in f.
func (f Flags) Has(other Flags) bool {
	return f&other == other
}

// String returns the canonical letter form of f.
func (f Flags) String() string {
	return BuildFlags(f)
}

// BuildFlags returns the letters for the flags set in f, in canonical order.
// Eg: FlagSeen|FlagReplied returns "RS".
func BuildFlags(f Flags) string {
	var b strings.Builder
	for _, fl := range flagLetters {
		if f&fl.flag != 0 {
			b.WriteByte(fl.letter)
		}
	}
	return b.String()
}

// ParseFlags decodes a flag-letter sequence. Letters may appear in any order;
// unknown letters are ignored. Parsing stops at the first ',' since anything
// after it is not flag data.
func ParseFlags(letters string) Flags {
	var f Flags
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c == ',' {
			break
		}
		for _, fl := range flagLetters {
			if fl.letter == c {
				f |= fl.flag
				break
			}
		}
	}
	return f
}

// IMAP returns the IMAP system flag names for f.
func (f Flags) IMAP() []string {
	var result []string
	if f.Has(FlagSeen) {
		result = append(result, imap.SeenFlag)
	}
	if f.Has(FlagReplied) {
		result = append(result, imap.AnsweredFlag)
	}
	if f.Has(FlagFlagged) {
		result = append(result, imap.FlaggedFlag)
	}
	if f.Has(FlagDeleted) {
		result = append(result, imap.DeletedFlag)
	}
	if f.Has(FlagDraft) {
		result = append(result, imap.DraftFlag)
	}
	return result
}

// FlagsFromIMAP converts IMAP flag names to Flags. Keywords and flags with
// no maildir letter are ignored.
func FlagsFromIMAP(names []string) Flags {
	var f Flags
	for _, name := range names {
		switch imap.CanonicalFlag(name) {
		case imap.SeenFlag:
			f |= FlagSeen
		case imap.AnsweredFlag:
			f |= FlagReplied
		case imap.FlaggedFlag:
			f |= FlagFlagged
		case imap.DeletedFlag:
			f |= FlagDeleted
		case imap.DraftFlag:
			f |= FlagDraft
		}
	}
	return f
}

// Maildir returns f as go-maildir flags, in canonical order.
func (f Flags) Maildir() []gomaildir.Flag {
	var result []gomaildir.Flag
	for _, fl := range flagLetters {
		if f&fl.flag != 0 {
			result = append(result, gomaildir.Flag(fl.letter))
		}
	}
	return result
}

// FlagsFromMaildir converts go-maildir flags to Flags.
func FlagsFromMaildir(flags []gomaildir.Flag) Flags {
	var b strings.Builder
	for _, fl := range flags {
		b.WriteRune(rune(fl))
	}
	return ParseFlags(b.String())
}
