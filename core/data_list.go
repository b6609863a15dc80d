package core

import (
	"iter"
	"reflect"
	"slices"
	"sync"
)

type dataLister interface {
	DataList() *DataList
}

// DataList is an ordered list of Data objects.
//
// An enumerator holds the read lock until it is closed, so writers wait
// for every open enumerator. Reads nest: a goroutine holding an enumerator
// may read the list again even while a writer is waiting. It must not write
// to the list.
type DataList struct {
	mu recursiveRWLock

	elemType    reflect.Type
	dynamicType string
	query       string
	objectPath  string
	includes    []string

	items []Data
}

// NewDataList creates an empty list of elemType objects. elemType may be nil.
func NewDataList(elemType reflect.Type, items ...Data) *DataList {
	l := &DataList{elemType: elemType}
	l.items = append(l.items, items...)
	return l
}

// ElemType returns the Data struct type of the elements.
func (l *DataList) ElemType() reflect.Type { return l.elemType }

func (l *DataList) DynamicType() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dynamicType
}

func (l *DataList) SetDynamicType(dynamicType string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dynamicType = dynamicType
}

// Query is the query the list was loaded with, if any.
func (l *DataList) Query() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.query
}

func (l *DataList) SetQuery(query string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.query = query
}

// ObjectPath is the property path of the list on its owner.
func (l *DataList) ObjectPath() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.objectPath
}

func (l *DataList) SetObjectPath(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.objectPath = path
}

// OfDynamicType sets the dynamic Data type of the elements and returns l.
func (l *DataList) OfDynamicType(dynamicType string) *DataList {
	l.SetDynamicType(dynamicType)
	return l
}

// Include adds property paths to load together with the list and returns l.
// Paths already included are ignored.
func (l *DataList) Include(paths ...string) *DataList {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range paths {
		if p != "" && !slices.Contains(l.includes, p) {
			l.includes = append(l.includes, p)
		}
	}
	return l
}

// Includes returns the paths added with Include, in order.
func (l *DataList) Includes() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.includes)
}

func (l *DataList) DataList() *DataList { return l }

func (l *DataList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// At returns the element at i, or nil when i is out of range.
func (l *DataList) At(i int) Data {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

func (l *DataList) Add(items ...Data) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, items...)
}

// Insert places d at i and reports whether i was in range.
func (l *DataList) Insert(i int, d Data) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i > len(l.items) {
		return false
	}
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = d
	return true
}

// Remove deletes the first occurrence of d.
func (l *DataList) Remove(d Data) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(d)
	if i < 0 {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return true
}

func (l *DataList) RemoveAt(i int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.items) {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return true
}

// IndexOf returns the position of d by identity, or -1.
func (l *DataList) IndexOf(d Data) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.indexOf(d)
}

func (l *DataList) Contains(d Data) bool {
	return l.IndexOf(d) >= 0
}

func (l *DataList) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}

// Snapshot returns a copy of the elements.
func (l *DataList) Snapshot() []Data {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Data(nil), l.items...)
}

// Iter opens an enumerator. The caller must Close it.
func (l *DataList) Iter() *DataEnumerator {
	l.mu.RLock()
	return &DataEnumerator{list: l, index: -1}
}

// All ranges over the elements under the read lock.
func (l *DataList) All() iter.Seq2[int, Data] {
	return func(yield func(int, Data) bool) {
		it := l.Iter()
		defer it.Close()

		for it.Next() {
			if !yield(it.Index(), it.Current()) {
				return
			}
		}
	}
}

func (l *DataList) indexOf(d Data) int {
	if isNil(d) {
		return -1
	}
	target := BaseOf(d)
	for i, item := range l.items {
		if !isNil(item) && BaseOf(item) == target {
			return i
		}
	}
	return -1
}

// DataEnumerator walks a DataList while holding its read lock.
type DataEnumerator struct {
	list  *DataList
	index int
	once  sync.Once
	done  bool
}

func (e *DataEnumerator) Next() bool {
	if e.done {
		return false
	}
	e.index++
	return e.index < len(e.list.items)
}

func (e *DataEnumerator) Index() int { return e.index }

func (e *DataEnumerator) Current() Data {
	if e.done || e.index < 0 || e.index >= len(e.list.items) {
		return nil
	}
	return e.list.items[e.index]
}

// Close releases the read lock. It is safe to call more than once.
func (e *DataEnumerator) Close() error {
	e.once.Do(func() {
		e.done = true
		e.list.mu.RUnlock()
	})
	return nil
}
