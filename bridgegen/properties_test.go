package bridgegen

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/zwisler-a/bridge"
	"github.com/zwisler-a/bridge/bridgegen/sink"
	"github.com/zwisler-a/bridge/internal/testfixtures"
)

var paramTypes = []reflect.Type{
	reflect.TypeFor[string](),
	reflect.TypeFor[int64](),
	reflect.TypeFor[[]bool](),
	reflect.TypeFor[testfixtures.User](),
	reflect.TypeFor[*testfixtures.Post](),
	reflect.TypeFor[map[string]testfixtures.Category](),
}

var tsParamTypes = []string{"string", "number", "boolean[]", "User", "Post | null", "Record<string, Category>"}

// registryFrom builds an app with one group per entry of shape; each entry
// lists the parameter type indices of the group's single operation.
func registryFrom(shape [][]int) *bridge.App {
	app := bridge.NewApp()
	for gi, params := range shape {
		op := bridge.Declare("call").Method(bridge.POST)
		for pi, ti := range params {
			op.Param(fmt.Sprintf("p%d", pi), paramTypes[ti])
		}
		app.Register(bridge.NewRoute(fmt.Sprintf("Group%d", gi)).Endpoint(op).Build())
	}
	return app
}

func genShape() gopter.Gen {
	return gen.SliceOfN(4, gen.SliceOfN(3, gen.IntRange(0, len(paramTypes)-1)))
}

func TestDeterminismProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("two runs over the same registry are byte-identical", prop.ForAll(
		func(shape [][]int) bool {
			a, b := sink.NewMemorySink(), sink.NewMemorySink()
			if _, err := GenerateTo(context.Background(), registryFrom(shape), a, testConfig()); err != nil {
				return false
			}
			if _, err := GenerateTo(context.Background(), registryFrom(shape), b, testConfig()); err != nil {
				return false
			}
			if !reflect.DeepEqual(a.Order(), b.Order()) {
				return false
			}
			for _, path := range a.Order() {
				if !bytes.Equal(a.Get(path), b.Get(path)) {
					return false
				}
			}
			return true
		},
		genShape(),
	))

	properties.Property("one type definition per identity", prop.ForAll(
		func(shape [][]int) bool {
			result, err := GenerateTo(context.Background(), registryFrom(shape), sink.NewMemorySink(), testConfig())
			if err != nil {
				return false
			}
			seen := map[string]bool{}
			for _, f := range result.Files {
				if seen[f.Path] {
					return false
				}
				seen[f.Path] = true
			}
			return true
		},
		genShape(),
	))

	properties.TestingRun(t)
}

func TestParameterExclusionProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("generated signature is the caller-supplied subset in order", prop.ForAll(
		func(types []int, injectMask uint8) bool {
			op := bridge.Declare("call")
			var want []string
			for i, ti := range types {
				name := fmt.Sprintf("p%d", i)
				op.Param(name, paramTypes[ti])
				if injectMask&(1<<i) != 0 {
					op.Inject(i, "ip")
					continue
				}
				want = append(want, name+": "+tsParamTypes[ti])
			}
			app := bridge.NewApp().Register(bridge.NewRoute("Things").Endpoint(op).Build())

			out := sink.NewMemorySink()
			if _, err := GenerateTo(context.Background(), app, out, testConfig()); err != nil {
				return false
			}
			signature := "  call(" + strings.Join(want, ", ") + "): Observable<ApiResponse<void>> {\n"
			return strings.Contains(string(out.Get("things.service.ts")), signature)
		},
		gen.SliceOfN(6, gen.IntRange(0, len(paramTypes)-1)),
		gen.UInt8(),
	))

	properties.TestingRun(t)
}
