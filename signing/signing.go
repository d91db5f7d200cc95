// Package signing groups the entities taking part in a signature request by
// the factor sources that control them.
package signing

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/RaghavSood/factorkit/factor"
	"github.com/RaghavSood/factorkit/profile"
)

var ErrFactorSourceNotFound = errors.New("entity is controlled by an unknown factor source")

// Purpose selects which key of an entity signs.
type Purpose int

const (
	// TransactionIntent signs with the transaction signing key.
	TransactionIntent Purpose = iota
	// ProveOwnership signs with the authentication signing key, falling back
	// to the transaction signing key for entities without one.
	ProveOwnership
)

func (p Purpose) String() string {
	switch p {
	case TransactionIntent:
		return "transactionIntent"
	case ProveOwnership:
		return "proveOwnership"
	default:
		return fmt.Sprintf("Purpose(%d)", int(p))
	}
}

// Signer is an entity together with the instances it must sign with.
type Signer struct {
	Entity    profile.Entity
	Instances []factor.Instance
}

// Factor is one factor source and every signer it must sign for.
type Factor struct {
	Source  factor.Source
	Signers []Signer
}

// Bucket holds the factors of a single kind.
type Bucket struct {
	Kind    factor.Kind
	Factors []Factor
}

// Factors is the full signing plan: buckets in signing order, device last.
type Factors []Bucket

// Build assembles the signing plan for entities. The result does not depend
// on the order of entities; a repeated entity replaces the earlier one.
func Build(entities []profile.Entity, sources profile.FactorSources, purpose Purpose) (Factors, error) {
	byID := make(map[factor.ID]*Factor)

	for _, e := range entities {
		control, err := e.UnsecuredControl()
		if err != nil {
			return nil, err
		}

		instance := control.TransactionSigning
		if purpose == ProveOwnership && control.AuthenticationSigning != nil {
			instance = *control.AuthenticationSigning
		}

		src, ok := sources.Get(instance.FactorSourceID)
		if !ok {
			return nil, fmt.Errorf("%w: %s (entity %s)", ErrFactorSourceNotFound, instance.FactorSourceID, e.Address)
		}

		f, ok := byID[src.ID()]
		if !ok {
			f = &Factor{Source: src}
			byID[src.ID()] = f
		}
		f.merge(Signer{Entity: e.Clone(), Instances: []factor.Instance{instance}})
	}

	buckets := make(map[factor.Kind]*Bucket)
	for _, f := range byID {
		slices.SortFunc(f.Signers, func(a, b Signer) int {
			return cmp.Compare(a.Entity.Address, b.Entity.Address)
		})
		k := f.Source.Kind()
		b, ok := buckets[k]
		if !ok {
			b = &Bucket{Kind: k}
			buckets[k] = b
		}
		b.Factors = append(b.Factors, *f)
	}

	out := make(Factors, 0, len(buckets))
	for _, b := range buckets {
		slices.SortFunc(b.Factors, func(x, y Factor) int {
			return cmp.Compare(x.Source.ID().String(), y.Source.ID().String())
		})
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b Bucket) int {
		return cmp.Compare(a.Kind.SigningOrder(), b.Kind.SigningOrder())
	})
	return out, nil
}

func (f *Factor) merge(s Signer) {
	i := slices.IndexFunc(f.Signers, func(x Signer) bool { return x.Entity.Address == s.Entity.Address })
	if i >= 0 {
		f.Signers[i] = s
		return
	}
	f.Signers = append(f.Signers, s)
}

// ExpectedSignatureCount is the number of signatures the plan produces.
func (fs Factors) ExpectedSignatureCount() int {
	n := 0
	for _, b := range fs {
		for _, f := range b.Factors {
			for _, s := range f.Signers {
				n += len(s.Instances)
			}
		}
	}
	return n
}

func (fs Factors) Kinds() []factor.Kind {
	out := make([]factor.Kind, len(fs))
	for i, b := range fs {
		out[i] = b.Kind
	}
	return out
}

func (fs Factors) Bucket(k factor.Kind) (Bucket, bool) {
	for _, b := range fs {
		if b.Kind == k {
			return b, true
		}
	}
	return Bucket{}, false
}

// SourceIDs lists every factor source in signing order.
func (fs Factors) SourceIDs() []factor.ID {
	var out []factor.ID
	for _, b := range fs {
		for _, f := range b.Factors {
			out = append(out, f.Source.ID())
		}
	}
	return out
}
