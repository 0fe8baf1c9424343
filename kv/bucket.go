// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "bytes"

// Bucket provides logical bucket for kv store.
type Bucket string

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		getFunc
		hasFunc
		isNotFoundFunc
		newIteratorFunc
	}{
		func(key []byte) ([]byte, error) { return src.Get(b.makeKey(key)) },
		func(key []byte) (bool, error) { return src.Has(b.makeKey(key)) },
		src.IsNotFound,
		func(r Range) Iterator {
			return &bucketIterator{src.NewIterator(b.makeRange(r)), len(b)}
		},
	}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		putFunc
		deleteFunc
		newBatchFunc
	}{
		func(key, val []byte) error { return src.Put(b.makeKey(key), val) },
		func(key []byte) error { return src.Delete(b.makeKey(key)) },
		func() Batch { return &bucketBatch{src.NewBatch(), b} },
	}
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src GetPutter) GetPutter {
	return &struct {
		Getter
		Putter
	}{
		b.NewGetter(src),
		b.NewPutter(src),
	}
}

func (b Bucket) makeKey(key []byte) []byte {
	newKey := make([]byte, 0, len(b)+len(key))
	return append(append(newKey, b...), key...)
}

func (b Bucket) makeRange(r Range) Range {
	newRange := Range{
		From: b.makeKey(r.From),
	}
	if len(r.To) > 0 {
		newRange.To = b.makeKey(r.To)
	} else {
		newRange.To = upperBound([]byte(b))
	}
	return newRange
}

// upperBound returns the smallest key larger than all keys prefixed,
// or nil if no such key exists.
func upperBound(prefix []byte) []byte {
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] != 0xff {
			bound := bytes.Clone(prefix[:i+1])
			bound[i]++
			return bound
		}
	}
	return nil
}

type bucketBatch struct {
	src Batch
	b   Bucket
}

func (bb *bucketBatch) Put(key, val []byte) error {
	return bb.src.Put(bb.b.makeKey(key), val)
}

func (bb *bucketBatch) Delete(key []byte) error {
	return bb.src.Delete(bb.b.makeKey(key))
}

func (bb *bucketBatch) NewBatch() Batch { return &bucketBatch{bb.src.NewBatch(), bb.b} }
func (bb *bucketBatch) Len() int        { return bb.src.Len() }
func (bb *bucketBatch) Write() error    { return bb.src.Write() }

type bucketIterator struct {
	src       Iterator
	prefixLen int
}

func (bi *bucketIterator) Next() bool    { return bi.src.Next() }
func (bi *bucketIterator) Release()      { bi.src.Release() }
func (bi *bucketIterator) Error() error  { return bi.src.Error() }
func (bi *bucketIterator) Key() []byte   { return bi.src.Key()[bi.prefixLen:] }
func (bi *bucketIterator) Value() []byte { return bi.src.Value() }

type (
	getFunc         func(key []byte) ([]byte, error)
	hasFunc         func(key []byte) (bool, error)
	isNotFoundFunc  func(err error) bool
	newIteratorFunc func(r Range) Iterator
	putFunc         func(key, val []byte) error
	deleteFunc      func(key []byte) error
	newBatchFunc    func() Batch
)

func (f getFunc) Get(key []byte) ([]byte, error)       { return f(key) }
func (f hasFunc) Has(key []byte) (bool, error)         { return f(key) }
func (f isNotFoundFunc) IsNotFound(err error) bool     { return f(err) }
func (f newIteratorFunc) NewIterator(r Range) Iterator { return f(r) }
func (f putFunc) Put(key, val []byte) error            { return f(key, val) }
func (f deleteFunc) Delete(key []byte) error           { return f(key) }
func (f newBatchFunc) NewBatch() Batch                 { return f() }
