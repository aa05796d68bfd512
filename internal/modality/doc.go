// Package modality infers the data category of an imaging file from its name.
package modality
