package service

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/liuclever/summonking/internal/domain"
)

// Pairing is the output of one stage's pairing pass.
type Pairing struct {
	// Pairs holds the matchups in bracket order.
	Pairs [][2]uuid.UUID
	// Bye is the entrant that advances without a match on odd counts.
	Bye *uuid.UUID
	// Duplicates are the ids that appeared more than once in the input;
	// each is paired exactly once regardless.
	Duplicates []uuid.UUID
}

// Pair shuffles the competitor ids with the given seed and pairs them
// consecutively. Duplicate ids are collapsed to their first occurrence
// before the shuffle. On odd counts the last shuffled id takes the bye.
//
// The same (ids, seed) input always produces the same pairing, so a
// retried stage run regenerates identical matchups.
func Pair(ids []uuid.UUID, seed int64) (*Pairing, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	var duplicates []uuid.UUID
	for _, id := range ids {
		if seen[id] {
			duplicates = append(duplicates, id)
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(unique), func(i, j int) {
		unique[i], unique[j] = unique[j], unique[i]
	})

	p := &Pairing{Duplicates: duplicates}
	n := len(unique)
	if n%2 == 1 {
		bye := unique[n-1]
		p.Bye = &bye
		unique = unique[:n-1]
	}
	for i := 0; i+1 < len(unique); i += 2 {
		p.Pairs = append(p.Pairs, [2]uuid.UUID{unique[i], unique[i+1]})
	}

	if err := p.check(len(seen)); err != nil {
		return nil, err
	}
	return p, nil
}

// check verifies the postconditions: no self-pair, every unique entrant
// covered exactly once.
func (p *Pairing) check(uniqueCount int) error {
	covered := make(map[uuid.UUID]bool, uniqueCount)
	for _, pair := range p.Pairs {
		if pair[0] == pair[1] {
			return fmt.Errorf("%w: competitor %s paired against itself", domain.ErrPairingInvariant, pair[0])
		}
		for _, id := range pair {
			if covered[id] {
				return fmt.Errorf("%w: competitor %s paired twice", domain.ErrPairingInvariant, id)
			}
			covered[id] = true
		}
	}
	if p.Bye != nil {
		if covered[*p.Bye] {
			return fmt.Errorf("%w: bye competitor %s also paired", domain.ErrPairingInvariant, *p.Bye)
		}
		covered[*p.Bye] = true
	}
	if len(covered) != uniqueCount {
		return fmt.Errorf("%w: %d of %d entrants covered", domain.ErrPairingInvariant, len(covered), uniqueCount)
	}
	return nil
}
