// Copyright 2025 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package index

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Index is a generic sorted array index keyed by the values' String method.
// Keys are ordered bytewise so that all keys sharing a prefix are adjacent.
type Index[V fmt.Stringer] struct {
	index []V
}

// NewIndex creates an index from the given slice. The slice is copied.
func NewIndex[V fmt.Stringer](index []V) *Index[V] {
	sorted := make([]V, len(index))
	copy(sorted, index)
	slices.SortStableFunc(sorted, func(a, b V) int {
		return strings.Compare(a.String(), b.String())
	})

	return &Index[V]{
		index: sorted,
	}
}

// Len returns the number of values in the index.
func (idx *Index[V]) Len() int {
	return len(idx.index)
}

// Search performs a binary search over the index and returns the values
// whose key equals query.
func (idx *Index[V]) Search(query string) []V {
	i, found := sort.Find(len(idx.index), func(i int) int {
		return strings.Compare(query, idx.index[i].String())
	})

	if !found {
		return nil
	}

	j := i
	//nolint:revive // This block increments j.
	for ; j < len(idx.index) && idx.index[j].String() == query; j++ {
	}
	return idx.index[i:j]
}

// PrefixSearch returns the values whose key starts with prefix, in key
// order.
func (idx *Index[V]) PrefixSearch(prefix string) []V {
	i := sort.Search(len(idx.index), func(i int) bool {
		return idx.index[i].String() >= prefix
	})

	j := i
	//nolint:revive // This block increments j.
	for ; j < len(idx.index) && strings.HasPrefix(idx.index[j].String(), prefix); j++ {
	}
	if i == j {
		return nil
	}
	return idx.index[i:j]
}
