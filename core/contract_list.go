package core

import (
	"iter"
	"reflect"
)

// ContractList is a typed view over a DataList. Elements are converted to
// T when read.
type ContractList[T Contract] struct {
	data *DataList
}

// ToContractList wraps list. A nil list is replaced by an empty one.
func ToContractList[T Contract](list *DataList) *ContractList[T] {
	if list == nil {
		list = NewDataList(nil)
	}
	return &ContractList[T]{data: list}
}

// DataList returns the wrapped list.
func (l *ContractList[T]) DataList() *DataList { return l.data }

// ToDataList copies the elements into a new DataList.
func (l *ContractList[T]) ToDataList() *DataList {
	out := NewDataList(l.data.ElemType(), l.data.Snapshot()...)
	out.SetDynamicType(l.data.DynamicType())
	out.Include(l.data.Includes()...)
	return out
}

func (l *ContractList[T]) Len() int { return l.data.Len() }

// At returns the element at i as T, or the zero T.
func (l *ContractList[T]) At(i int) T {
	return contractAt[T](l.data.At(i))
}

func (l *ContractList[T]) Add(items ...T) {
	for _, c := range items {
		if d := dataOf(c); d != nil {
			l.data.Add(d)
		}
	}
}

func (l *ContractList[T]) Insert(i int, c T) bool {
	d := dataOf(c)
	if d == nil {
		return false
	}
	return l.data.Insert(i, d)
}

func (l *ContractList[T]) Remove(c T) bool {
	return l.data.Remove(dataOf(c))
}

func (l *ContractList[T]) RemoveAt(i int) bool { return l.data.RemoveAt(i) }

func (l *ContractList[T]) IndexOf(c T) int {
	return l.data.IndexOf(dataOf(c))
}

func (l *ContractList[T]) Contains(c T) bool {
	return l.IndexOf(c) >= 0
}

func (l *ContractList[T]) Clear() { l.data.Clear() }

// All ranges over the elements as T under the list's read lock.
func (l *ContractList[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, d := range l.data.All() {
			if !yield(i, contractAt[T](d)) {
				return
			}
		}
	}
}

// Slice converts every element.
func (l *ContractList[T]) Slice() []T {
	items := l.data.Snapshot()
	out := make([]T, 0, len(items))
	for _, d := range items {
		out = append(out, contractAt[T](d))
	}
	return out
}

func dataOf(c Contract) Data {
	if isNil(c) {
		return nil
	}
	return c.Data()
}

func contractAt[T Contract](d Data) T {
	var zero T
	if isNil(d) {
		return zero
	}
	return As[T](d)
}

// As returns the Contract view T of a Data object, built and cached on
// first use. It returns the zero T when no Contract type fits.
func As[T Contract](d Data) T {
	var zero T
	if isNil(d) {
		return zero
	}
	c := BaseOf(d).AsContract(reflect.TypeOf((*T)(nil)).Elem())
	if v, ok := c.(T); ok {
		return v
	}
	return zero
}
