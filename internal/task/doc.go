// Package task provides background processing for question analysis jobs and
// scheduled maintenance work such as the quota retention sweeper.
package task
