package api

import (
	"io"
	"net/http"
	"os"

	"github.com/camstreamd/camstreamd/internal/app"
	"github.com/camstreamd/camstreamd/pkg/yaml"
	yamlv3 "gopkg.in/yaml.v3"
)

func configHandler(w http.ResponseWriter, r *http.Request) {
	if app.ConfigPath == "" {
		http.Error(w, "", http.StatusGone)
		return
	}

	switch r.Method {
	case "GET":
		data, err := os.ReadFile(app.ConfigPath)
		if err != nil {
			http.Error(w, "", http.StatusNotFound)
			return
		}
		// https://www.ietf.org/archive/id/draft-ietf-httpapi-yaml-mediatypes-00.html
		Response(w, data, MimeYAML)

	case "POST", "PATCH":
		data, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if r.Method == "PATCH" {
			// no need to validate after merge
			data, err = mergeYAML(app.ConfigPath, data)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		} else {
			// validate config
			var tmp struct{}
			if err = yaml.Unmarshal(data, &tmp); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		if err = os.WriteFile(app.ConfigPath, data, 0644); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		log.Info().Msg("[api] config updated, restart required")

	default:
		http.Error(w, "Method not allowed", http.StatusBadRequest)
	}
}

// mergeYAML merges patch into config file on node level, so comments
// of untouched keys survive
func mergeYAML(file1 string, yaml2 []byte) ([]byte, error) {
	data1, err := os.ReadFile(file1)
	if err != nil {
		return nil, err
	}

	var node1, node2 yamlv3.Node
	if err = yamlv3.Unmarshal(data1, &node1); err != nil {
		return nil, err
	}
	if err = yamlv3.Unmarshal(yaml2, &node2); err != nil {
		return nil, err
	}

	if node2.Content == nil {
		return data1, nil
	}
	if node1.Content == nil {
		return yaml2, nil
	}

	mergeNode(node1.Content[0], node2.Content[0])

	return yaml.Encode(&node1, 2)
}

func mergeNode(dst, src *yamlv3.Node) {
	if dst.Kind != yamlv3.MappingNode || src.Kind != yamlv3.MappingNode {
		// scalars and lists are replaced as a whole
		dst.Kind, dst.Tag, dst.Value, dst.Style, dst.Content = src.Kind, src.Tag, src.Value, src.Style, src.Content
		return
	}

	for i := 0; i+1 < len(src.Content); i += 2 {
		key, value := src.Content[i], src.Content[i+1]

		if j := indexKey(dst, key.Value); j >= 0 {
			mergeNode(dst.Content[j+1], value)
		} else {
			dst.Content = append(dst.Content, key, value)
		}
	}
}

func indexKey(node *yamlv3.Node, key string) int {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return i
		}
	}
	return -1
}
