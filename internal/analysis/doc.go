// Package analysis characterises recorded jello runs.
//
//   - [PowerSpectrum] and [DominantFrequency]: the wobble frequency of a
//     metric series such as the lattice extent
//   - [LyapunovExponent]: sensitivity of a world to a small displacement
//
// Frames are recorded at a fixed step interval, so a run's metric column
// can be passed straight to [DominantFrequency]:
//
//	freq, _ := analysis.DominantFrequency(extent, float64(every)*dt)
package analysis
