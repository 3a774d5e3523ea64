package set

import (
	"github.com/gofrs/uuid"
)

// UUID uuid.UUIDの集合
type UUID map[uuid.UUID]struct{}

// UUIDSetFromArray uuid.UUIDのスライスから集合を生成します
func UUIDSetFromArray(arr []uuid.UUID) UUID {
	set := UUID{}
	set.Add(arr...)
	return set
}

// Add 要素を追加します
func (set UUID) Add(v ...uuid.UUID) {
	for _, v := range v {
		set[v] = struct{}{}
	}
}

// Remove 要素を削除します
func (set UUID) Remove(v ...uuid.UUID) {
	for _, v := range v {
		delete(set, v)
	}
}

// Contains 指定した要素が含まれているかどうか
func (set UUID) Contains(v uuid.UUID) bool {
	_, ok := set[v]
	return ok
}

// Array uuid.UUIDのスライスに変換します
func (set UUID) Array() []uuid.UUID {
	arr := make([]uuid.UUID, 0, len(set))
	for k := range set {
		arr = append(arr, k)
	}
	return arr
}
