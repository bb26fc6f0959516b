// Package analysis inspects recorded runs.
//
//   - [PowerSpectrum] and [DominantFrequency]: periodicity of a per-frame
//     series such as the contact rate of a Newton's cradle
//   - [ContactRate]: contacts resolved in each frame
//   - [Phase]: position against velocity of one particle on one axis
//
// A phase portrait renders as plain text:
//
//	p, err := analysis.Phase(frames, 1, 0)
//	if err == nil {
//	    fmt.Print(p.ASCII(60, 20))
//	}
package analysis
