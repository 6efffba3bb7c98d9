package fake

import opentracing "github.com/opentracing/opentracing-go"

// GetTracerWithError is used to mock `tracing.GetTracer` with an error.
func GetTracerWithError(string) (opentracing.Tracer, error) {
	return nil, fakeErr
}
