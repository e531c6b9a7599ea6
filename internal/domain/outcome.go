package domain

// Outcome is the terminal result of one generation attempt: either a produced
// artifact reference or exactly one typed failure. Produced once per attempt.
type Outcome struct {
	ArtifactRef string
	Err         *Error
}

// Succeeded constructs a success outcome carrying the artifact reference.
func Succeeded(artifactRef string) Outcome {
	return Outcome{ArtifactRef: artifactRef}
}

// Failed wraps err into a failure outcome, labeling untyped errors along the way.
func Failed(err error) Outcome {
	if typed, ok := err.(*Error); ok {
		return Outcome{Err: typed}
	}
	return Outcome{Err: WrapE(KindGenerationFailed, "generation failed", err)}
}

// OK reports whether the attempt produced an artifact.
func (o Outcome) OK() bool {
	return o.Err == nil
}
