// Package permission models guild permission sets. The platform encodes
// permissions as a bitfield carried as a decimal string; sets are backed
// by a bitset so membership and subset checks stay cheap.
package permission

import (
	"strconv"

	"github.com/bits-and-blooms/bitset"
)

// Permission is a single permission, identified by its bit position.
type Permission uint

const (
	CreateInstantInvite Permission = 0
	KickMembers         Permission = 1
	BanMembers          Permission = 2
	Administrator       Permission = 3
	ManageChannels      Permission = 4
	ManageGuild         Permission = 5
	AddReactions        Permission = 6
	ViewAuditLog        Permission = 7
	PrioritySpeaker     Permission = 8
	Stream              Permission = 9
	ViewChannel         Permission = 10
	SendMessages        Permission = 11
	SendTTSMessages     Permission = 12
	ManageMessages      Permission = 13
	EmbedLinks          Permission = 14
	AttachFiles         Permission = 15
	ReadMessageHistory  Permission = 16
	MentionEveryone     Permission = 17
	UseExternalEmojis   Permission = 18
	Connect             Permission = 20
	Speak               Permission = 21
	MuteMembers         Permission = 22
	DeafenMembers       Permission = 23
	MoveMembers         Permission = 24
	ChangeNickname      Permission = 26
	ManageNicknames     Permission = 27
	ManageRoles         Permission = 28
	ManageWebhooks      Permission = 29
	ManageEmojis        Permission = 30
)

// setBits is wide enough for every permission bit the platform defines.
const setBits = 64

// Set is an immutable permission set. The zero value is the empty set.
type Set struct {
	bits *bitset.BitSet
}

// NewSet builds a set from individual permissions.
func NewSet(perms ...Permission) Set {
	b := bitset.New(setBits)
	for _, p := range perms {
		b.Set(uint(p))
	}
	return Set{bits: b}
}

// FromBits builds a set from the platform's u64 bitfield encoding.
func FromBits(v uint64) Set {
	return Set{bits: bitset.From([]uint64{v})}
}

// ParseBits parses the decimal string bitfield used on the wire, as in
// role objects and permission overwrites.
func ParseBits(s string) (Set, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return Set{}, err
	}
	return FromBits(v), nil
}

// Bits returns the set in the platform's u64 bitfield encoding.
func (s Set) Bits() uint64 {
	if s.bits == nil {
		return 0
	}
	words := s.bits.Bytes()
	if len(words) == 0 {
		return 0
	}
	return words[0]
}

// Has reports whether the set contains the permission.
func (s Set) Has(p Permission) bool {
	return s.bits != nil && s.bits.Test(uint(p))
}

// Contains reports whether every permission in required is present.
func (s Set) Contains(required Set) bool {
	if required.bits == nil || required.bits.None() {
		return true
	}
	if s.bits == nil {
		return false
	}
	return required.bits.Difference(s.bits).None()
}

// With returns a copy of the set with the given permissions added.
func (s Set) With(perms ...Permission) Set {
	var b *bitset.BitSet
	if s.bits == nil {
		b = bitset.New(setBits)
	} else {
		b = s.bits.Clone()
	}
	for _, p := range perms {
		b.Set(uint(p))
	}
	return Set{bits: b}
}

// Without returns a copy of the set with the given permissions removed.
func (s Set) Without(perms ...Permission) Set {
	if s.bits == nil {
		return Set{}
	}
	b := s.bits.Clone()
	for _, p := range perms {
		b.Clear(uint(p))
	}
	return Set{bits: b}
}

// Subtract returns the permissions in s that are not in other.
func (s Set) Subtract(other Set) Set {
	if s.bits == nil || other.bits == nil {
		return s
	}
	return Set{bits: s.bits.Difference(other.bits)}
}

// Union returns the combination of both sets.
func (s Set) Union(other Set) Set {
	if s.bits == nil {
		return other
	}
	if other.bits == nil {
		return s
	}
	return Set{bits: s.bits.Union(other.bits)}
}
