package yaml

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

func Unmarshal(in []byte, out interface{}) (err error) {
	return yaml.Unmarshal(in, out)
}

func Encode(v any, indent int) ([]byte, error) {
	b := bytes.NewBuffer(nil)
	e := yaml.NewEncoder(b)
	e.SetIndent(indent)

	if err := e.Encode(v); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

var ErrPath = errors.New("yaml: path not exist")

// Patch changes value at path (last item is the key) without breaking
// formatting and comments of other lines. Nil value removes the key.
func Patch(src []byte, path []string, value any) ([]byte, error) {
	if len(path) == 0 {
		return nil, ErrPath
	}

	key, parents := path[len(path)-1], path[:len(path)-1]

	parent, err := findParent(src, parents)
	if err != nil {
		return nil, err
	}

	var dst []byte

	if parent != nil {
		dst, err = addOrReplace(src, key, value, parent)
	} else {
		dst, err = addToEnd(src, key, value, parents)
	}
	if err != nil {
		return nil, err
	}

	// result must stay valid YAML
	if err = yaml.Unmarshal(dst, map[string]any{}); err != nil {
		return nil, err
	}

	return dst, nil
}

func findParent(src []byte, path []string) (*yaml.Node, error) {
	if len(src) == 0 {
		return nil, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, err
	}

	if root.Content == nil {
		return nil, nil
	}

	parent := root.Content[0] // yaml.DocumentNode
	for _, name := range path {
		if parent == nil {
			break
		}
		_, parent = findChild(parent, name)
	}
	return parent, nil
}

func findChild(node *yaml.Node, name string) (key, value *yaml.Node) {
	// mapping node content is key, value, key, value...
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == name {
			return node.Content[i], node.Content[i+1]
		}
	}
	return nil, nil
}

func firstChild(node *yaml.Node) *yaml.Node {
	if node.Content == nil {
		return node
	}
	return node.Content[0]
}

func lastChild(node *yaml.Node) *yaml.Node {
	if node.Content == nil {
		return node
	}
	return lastChild(node.Content[len(node.Content)-1])
}

func addOrReplace(src []byte, key string, value any, parent *yaml.Node) ([]byte, error) {
	put, err := Encode(map[string]any{key: value}, 2)
	if err != nil {
		return nil, err
	}

	if nodeKey, nodeValue := findChild(parent, key); nodeKey != nil {
		put = addIndent(put, nodeKey.Column-1)

		i0 := lineOffset(src, nodeKey.Line)
		i1 := lineOffset(src, lastChild(nodeValue).Line+1)

		return splice(src, i0, i1, put, value != nil), nil
	}

	put = addIndent(put, firstChild(parent).Column-1)

	i := lineOffset(src, lastChild(parent).Line+1)
	if i < 0 {
		// no new line on the end of file
		src = append(src, '\n')
		i = len(src)
	}

	return splice(src, i, i, put, value != nil), nil
}

func addToEnd(src []byte, key string, value any, path []string) ([]byte, error) {
	if len(path) > 1 || value == nil {
		return nil, ErrPath
	}

	var v any = map[string]any{key: value}
	if len(path) == 1 {
		v = map[string]any{path[0]: v}
	}

	put, err := Encode(v, 2)
	if err != nil {
		return nil, err
	}

	dst := make([]byte, 0, len(src)+len(put)+1)
	dst = append(dst, src...)
	if l := len(src); l > 0 && src[l-1] != '\n' {
		dst = append(dst, '\n')
	}
	return append(dst, put...), nil
}

// splice replaces src[i0:i1] with put, i1 < 0 means end of src
func splice(src []byte, i0, i1 int, put []byte, insert bool) []byte {
	dst := make([]byte, 0, len(src)+len(put))
	dst = append(dst, src[:i0]...)
	if insert {
		dst = append(dst, put...)
	}
	if i1 >= 0 {
		dst = append(dst, src[i1:]...)
	}
	return dst
}

func addIndent(src []byte, indent int) (dst []byte) {
	pre := bytes.Repeat([]byte{' '}, indent)
	for len(src) > 0 {
		dst = append(dst, pre...)
		i := bytes.IndexByte(src, '\n') + 1
		if i == 0 {
			dst = append(dst, src...)
			break
		}
		dst = append(dst, src[:i]...)
		src = src[i:]
	}
	return
}

func lineOffset(b []byte, line int) (offset int) {
	for l := 1; ; l++ {
		if l == line {
			return offset
		}

		i := bytes.IndexByte(b[offset:], '\n') + 1
		if i == 0 {
			break
		}
		offset += i
	}
	return -1
}
