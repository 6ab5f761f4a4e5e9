package text

import (
	"log"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

func Commify(v int) string { return Commify64(int64(v)) }

func Commify64(v int64) string {

	var sign string
	if v < 0 {
		sign = "-"
		v = -v
	}

	s := strconv.FormatInt(v, 10)

	for pos := len(s) - 3; pos > 0; pos -= 3 {
		s = s[:pos] + "," + s[pos:]
	}

	return sign + s
}

// Renders the keys of a string-keyed map as a sorted quoted list, for
// assembling helptexts out of the various plugin registries.
func AvailableMapKeys(m interface{}) string {

	v := reflect.ValueOf(m)
	if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
		log.Panicf("unexpected non-map-of-strings argument %T", m)
	}

	avail := make([]string, 0, v.Len())
	for _, k := range v.MapKeys() {
		avail = append(avail, "'"+k.String()+"'")
	}
	sort.Strings(avail)

	return strings.Join(avail, ", ")
}
