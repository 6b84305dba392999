package params

import (
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

var hexValue = regexp.MustCompile(`(:\s*)0x([0-9a-fA-F]+)\s*$`)

// LoadChainConfigFile loads a yaml chain config file on top of the mainnet
// defaults. Hex-encoded values (0x prefixed, the upstream config format)
// are rewritten into byte sequences before unmarshaling since yaml has no
// native hex notation. Unrecognized keys are an error so that typos in
// override files do not pass silently.
func LoadChainConfigFile(chainConfigFileName string) (*ChainConfig, error) {
	yamlFile, err := ioutil.ReadFile(chainConfigFileName) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "failed to read chain config file")
	}
	conf := MainnetConfig().Copy()
	if err := yaml.UnmarshalStrict(replaceHexValues(yamlFile), conf); err != nil {
		return nil, errors.Wrap(err, "failed to parse chain config yaml file")
	}
	return conf, nil
}

// replaceHexValues rewrites `KEY: 0xdeadbeef` lines as yaml byte sequences
// so that they unmarshal into []byte fields.
func replaceHexValues(in []byte) []byte {
	lines := strings.Split(string(in), "\n")
	for i, line := range lines {
		m := hexValue.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		raw, err := hex.DecodeString(m[2])
		if err != nil {
			continue
		}
		elems := make([]string, len(raw))
		for j, b := range raw {
			elems[j] = fmt.Sprintf("%d", b)
		}
		lines[i] = hexValue.ReplaceAllString(line, "${1}["+strings.Join(elems, ", ")+"]")
	}
	return []byte(strings.Join(lines, "\n"))
}
