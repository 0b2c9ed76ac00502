package models

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

var (
	modelRegistry      = make(map[string]interface{})
	modelRegistryMutex sync.RWMutex
)

func init() {
	_ = RegisterModel(&User{}, "users")
	_ = RegisterModel(&Order{}, "orders")
}

// RegisterModel registers a model type with the registry
// The model must be a struct or a pointer to a struct
// e.g RegisterModel(&User{},"users")
func RegisterModel(model interface{}, name string) error {
	modelRegistryMutex.Lock()
	defer modelRegistryMutex.Unlock()

	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return fmt.Errorf("model must be a struct, got %s", modelType.Kind())
	}
	if name == "" {
		name = modelType.Name()
	}
	modelRegistry[name] = model
	return nil
}

// GetModels returns all registered models, ordered by name
func GetModels() []interface{} {
	modelRegistryMutex.RLock()
	defer modelRegistryMutex.RUnlock()

	names := make([]string, 0, len(modelRegistry))
	for name := range modelRegistry {
		names = append(names, name)
	}
	sort.Strings(names)

	models := make([]interface{}, 0, len(names))
	for _, name := range names {
		models = append(models, modelRegistry[name])
	}
	return models
}
