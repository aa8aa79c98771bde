// Package fakedata generates random record collections for demos and
// property tests. A Generator with a fixed seed is reproducible.
package fakedata

import (
	"fmt"
	"strconv"

	"github.com/aweris/merklesync"
	"github.com/brianvoe/gofakeit/v6"
)

type Generator struct {
	faker *gofakeit.Faker
	next  uint64
}

func New(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed), next: 1}
}

func (g *Generator) key() merklesync.Key {
	k := merklesync.Key(strconv.FormatUint(g.next, 10))
	g.next++
	return k
}

func (g *Generator) content() string {
	return fmt.Sprintf("%s: %s", g.faker.Name(), g.faker.Sentence(6))
}

// Collection returns n records with fresh sequential keys.
func (g *Generator) Collection(n int) merklesync.Collection {
	c := make(merklesync.Collection, n)
	for i := range c {
		c[i] = merklesync.Record{Key: g.key(), Content: g.content()}
	}
	return c
}

// Changes says how many records Diverge touches.
type Changes struct {
	Modify int
	Add    int
	Delete int
}

// Diverge returns a copy of c with random records modified and deleted
// and new records appended. Counts larger than c are clamped.
func (g *Generator) Diverge(c merklesync.Collection, ch Changes) merklesync.Collection {
	out := c.Clone()

	for _, i := range g.pick(len(out), ch.Modify) {
		next := g.content()
		if next == out[i].Content {
			next += " (edited)"
		}
		out[i].Content = next
	}

	drop := make(map[int]struct{})
	for _, i := range g.pick(len(out), ch.Delete) {
		drop[i] = struct{}{}
	}
	kept := out[:0]
	for i, r := range out {
		if _, ok := drop[i]; !ok {
			kept = append(kept, r)
		}
	}
	out = kept

	for range ch.Add {
		out = append(out, merklesync.Record{Key: g.key(), Content: g.content()})
	}
	return out
}

// Shuffle returns c in a random order.
func (g *Generator) Shuffle(c merklesync.Collection) merklesync.Collection {
	out := c.Clone()
	g.faker.ShuffleAnySlice(out)
	return out
}

// pick returns up to n distinct indexes below size.
func (g *Generator) pick(size, n int) []int {
	if n > size {
		n = size
	}
	if n <= 0 {
		return nil
	}
	idx := make([]int, size)
	for i := range idx {
		idx[i] = i
	}
	g.faker.ShuffleAnySlice(idx)
	return idx[:n]
}
