package set

// String stringの集合
type String map[string]struct{}

// StringSetFromArray stringのスライスから集合を生成します
func StringSetFromArray(arr []string) String {
	set := String{}
	set.Add(arr...)
	return set
}

// Add 要素を追加します
func (set String) Add(v ...string) {
	for _, v := range v {
		set[v] = struct{}{}
	}
}

// Remove 要素を削除します
func (set String) Remove(v ...string) {
	for _, v := range v {
		delete(set, v)
	}
}

// Contains 指定した要素が含まれているかどうか
func (set String) Contains(v string) bool {
	_, ok := set[v]
	return ok
}

// Len 要素数を返します
func (set String) Len() int {
	return len(set)
}
