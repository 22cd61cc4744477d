package constraintsamplers

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/ipa-fxm-rc/moveit-core/logging"
)

// AllocatorConfig names a registered allocator type and its attributes.
type AllocatorConfig struct {
	Type       string                 `json:"type"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// A ConfigValidator checks converted allocator attributes. path locates the attributes in the
// enclosing configuration for error messages.
type ConfigValidator interface {
	Validate(path string) error
}

type (
	// An AllocatorConstructor creates an allocator from its converted attributes.
	AllocatorConstructor[ConfigT any] func(conf ConfigT, logger logging.Logger) (Allocator, error)

	// An AttributeMapConverter converts raw attributes into the native config type of an allocator.
	AttributeMapConverter[ConfigT any] func(attributes map[string]interface{}) (ConfigT, error)
)

// AllocatorRegistration describes how to build an allocator type from configuration.
type AllocatorRegistration[ConfigT ConfigValidator] struct {
	Constructor AllocatorConstructor[ConfigT]

	// AttributeMapConverter defaults to TransformAttributeMap.
	AttributeMapConverter AttributeMapConverter[ConfigT]
}

var (
	registryMu sync.RWMutex
	registry   = map[string]AllocatorRegistration[ConfigValidator]{}
)

// RegisterAllocatorType makes an allocator type available to NewAllocatorFromConfig. It panics if
// the type is already registered or has no constructor.
func RegisterAllocatorType[ConfigT ConfigValidator](typ string, reg AllocatorRegistration[ConfigT]) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, old := registry[typ]; old {
		panic(errors.Errorf("trying to register two allocators with same type: %q", typ))
	}
	if reg.Constructor == nil {
		panic(errors.Errorf("cannot register a nil constructor for allocator type: %q", typ))
	}
	if reg.AttributeMapConverter == nil {
		reg.AttributeMapConverter = TransformAttributeMap[ConfigT]
	}
	registry[typ] = makeGenericAllocatorRegistration(reg)
}

// deregisterAllocatorType is used by tests.
func deregisterAllocatorType(typ string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, typ)
}

func makeGenericAllocatorRegistration[ConfigT ConfigValidator](
	typed AllocatorRegistration[ConfigT],
) AllocatorRegistration[ConfigValidator] {
	return AllocatorRegistration[ConfigValidator]{
		Constructor: func(conf ConfigValidator, logger logging.Logger) (Allocator, error) {
			native, ok := conf.(ConfigT)
			if !ok {
				return nil, errors.Errorf("expected allocator config %T but got %T", native, conf)
			}
			return typed.Constructor(native, logger)
		},
		AttributeMapConverter: func(attributes map[string]interface{}) (ConfigValidator, error) {
			native, err := typed.AttributeMapConverter(attributes)
			if err != nil {
				return nil, err
			}
			return native, nil
		},
	}
}

// RegisteredAllocatorTypes returns the registered type names, sorted.
func RegisteredAllocatorTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := lo.Keys(registry)
	sort.Strings(types)
	return types
}

// TransformAttributeMap decodes attributes into T using its json tags. Unknown attributes are an
// error.
func TransformAttributeMap[T any](attributes map[string]interface{}) (T, error) {
	var out T

	var forResult interface{}
	toT := reflect.TypeOf(out)
	if toT != nil && toT.Kind() == reflect.Ptr {
		var ok bool
		out, ok = reflect.New(toT.Elem()).Interface().(T)
		if !ok {
			return out, errors.Errorf("failed to allocate default config type %T", out)
		}
		forResult = out
	} else {
		forResult = &out
	}

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           forResult,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return out, err
	}
	if len(md.Unused) > 0 {
		sort.Strings(md.Unused)
		return out, errors.Errorf("unknown attributes %v", md.Unused)
	}
	return out, nil
}

// NewAllocatorFromConfig converts, validates and constructs a registered allocator type.
func NewAllocatorFromConfig(conf AllocatorConfig, path string, logger logging.Logger) (Allocator, error) {
	registryMu.RLock()
	reg, ok := registry[conf.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("%s: unknown allocator type %q, registered types are %v", path, conf.Type, RegisteredAllocatorTypes())
	}

	native, err := reg.AttributeMapConverter(conf.Attributes)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: cannot convert attributes of %q allocator", path, conf.Type)
	}
	if err := native.Validate(path); err != nil {
		return nil, err
	}
	return reg.Constructor(native, logger.Sublogger(conf.Type))
}

// NewManagerFromConfig builds a manager and registers one allocator per config, in order. Every
// failing config is reported.
func NewManagerFromConfig(logger logging.Logger, confs []AllocatorConfig, opts ...ManagerOption) (*Manager, error) {
	m := NewManager(logger, opts...)
	var errs error
	for i, conf := range confs {
		alloc, err := NewAllocatorFromConfig(conf, fmt.Sprintf("allocators.%d", i), logger)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		m.RegisterAllocator(alloc)
	}
	if errs != nil {
		return nil, errs
	}
	return m, nil
}
