package shell

import (
	"os"
	"regexp"
)

// ${NAME} or ${NAME:default}
var envVar = regexp.MustCompile(`\$\{([^{}:]+)(?::([^{}]*))?\}`)

// ReplaceEnvVars substitutes environment variables in text. Unknown variable
// without default is left as is.
func ReplaceEnvVars(text string) string {
	return envVar.ReplaceAllStringFunc(text, func(match string) string {
		m := envVar.FindStringSubmatch(match)
		if value, ok := os.LookupEnv(m[1]); ok {
			return value
		}
		if len(match) > len(m[1])+3 {
			return m[2] // has default, maybe empty
		}
		return match
	})
}
