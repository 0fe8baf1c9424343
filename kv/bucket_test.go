// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mem map[string]string

func (m mem) Get(k []byte) ([]byte, error) {
	if v, ok := m[string(k)]; ok {
		return []byte(v), nil
	}
	return nil, errors.New("not found")
}

func (m mem) Has(k []byte) (bool, error) {
	_, ok := m[string(k)]
	return ok, nil
}

func (m mem) Put(k, v []byte) error {
	m[string(k)] = string(v)
	return nil
}

func (m mem) Delete(k []byte) error {
	delete(m, string(k))
	return nil
}

func (m mem) IsNotFound(err error) bool {
	return err != nil && err.Error() == "not found"
}

func (m mem) NewBatch() Batch {
	return &memBatch{m: m}
}

func (m mem) NewIterator(r Range) Iterator {
	var keys []string
	for k := range m {
		if k >= string(r.From) && (len(r.To) == 0 || k < string(r.To)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return &memIterator{m: m, keys: keys, i: -1}
}

type memBatch struct {
	m   mem
	ops []func()
}

func (b *memBatch) Put(k, v []byte) error {
	kk, vv := string(k), string(v)
	b.ops = append(b.ops, func() { b.m[kk] = vv })
	return nil
}

func (b *memBatch) Delete(k []byte) error {
	kk := string(k)
	b.ops = append(b.ops, func() { delete(b.m, kk) })
	return nil
}

func (b *memBatch) NewBatch() Batch { return &memBatch{m: b.m} }
func (b *memBatch) Len() int        { return len(b.ops) }
func (b *memBatch) Write() error {
	for _, op := range b.ops {
		op()
	}
	return nil
}

type memIterator struct {
	m    mem
	keys []string
	i    int
}

func (it *memIterator) Next() bool {
	it.i++
	return it.i < len(it.keys)
}
func (it *memIterator) Release()      {}
func (it *memIterator) Error() error  { return nil }
func (it *memIterator) Key() []byte   { return []byte(it.keys[it.i]) }
func (it *memIterator) Value() []byte { return []byte(it.m[it.keys[it.i]]) }

func TestBucketStore(t *testing.T) {
	src := mem{}
	store := Bucket("b1").NewStore(src)

	assert.Nil(t, store.Put([]byte("k1"), []byte("v1")))
	assert.Equal(t, mem{"b1k1": "v1"}, src)

	v, err := store.Get([]byte("k1"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v1"), v)

	has, err := store.Has([]byte("k1"))
	assert.Nil(t, err)
	assert.True(t, has)

	_, err = store.Get([]byte("k2"))
	assert.True(t, store.IsNotFound(err))

	assert.Nil(t, store.Delete([]byte("k1")))
	assert.Equal(t, mem{}, src)
}

func TestBucketBatch(t *testing.T) {
	src := mem{}
	store := Bucket("b1").NewStore(src)

	batch := store.NewBatch()
	assert.Nil(t, batch.Put([]byte("k1"), []byte("v1")))
	assert.Nil(t, batch.Put([]byte("k2"), []byte("v2")))
	assert.Equal(t, 2, batch.Len())

	assert.Equal(t, mem{}, src)
	assert.Nil(t, batch.Write())
	assert.Equal(t, mem{"b1k1": "v1", "b1k2": "v2"}, src)
}

func TestBucketIterate(t *testing.T) {
	src := mem{}
	b1 := Bucket("b1").NewStore(src)
	b2 := Bucket("b2").NewStore(src)

	assert.Nil(t, b1.Put([]byte("k1"), []byte("v1")))
	assert.Nil(t, b1.Put([]byte("k2"), []byte("v2")))
	assert.Nil(t, b2.Put([]byte("k3"), []byte("v3")))

	got := map[string]string{}
	it := b1.NewIterator(Range{})
	for it.Next() {
		got[string(it.Key())] = string(it.Value())
	}
	it.Release()
	assert.Nil(t, it.Error())
	assert.Equal(t, map[string]string{"k1": "v1", "k2": "v2"}, got)
}

func TestUpperBound(t *testing.T) {
	tests := []struct {
		prefix   []byte
		expected []byte
	}{
		{[]byte("b1"), []byte("b2")},
		{[]byte{0x01, 0xff}, []byte{0x02}},
		{[]byte{0xff, 0xff}, nil},
		{nil, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, upperBound(tt.prefix))
	}
}
