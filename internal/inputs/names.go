package inputs

import "reflect"

// Names returns the action input names Load reads, in the order Params
// declares them.
func Names() []string {
	t := reflect.TypeFor[Params]()
	names := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		if name := t.Field(i).Tag.Get("input"); name != "" {
			names = append(names, name)
		}
	}
	return names
}
