package document

import "reflect"

// enterVisited records a map or slice in the visited set and reports whether
// traversal may proceed. A revisited container means the input graph aliases
// itself; callers drop that branch instead of recursing forever. Empty
// containers are ignored since they cannot participate in a cycle and may
// share a backing pointer.
func enterVisited(visited map[uintptr]bool, container interface{}) bool {
	value := reflect.ValueOf(container)
	switch value.Kind() {
	case reflect.Map, reflect.Slice:
		if value.IsNil() || value.Len() == 0 {
			return true
		}
		ptr := value.Pointer()
		if visited[ptr] {
			return false
		}
		visited[ptr] = true
	}
	return true
}
