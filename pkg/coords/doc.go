// Package coords turns the command-line time, altitude and location
// specifications into the coordinate arrays handed to the model.
package coords
