package sinks

import "github.com/brettbedarf/dirshell"

// Tee forwards every call to each of its sinks, in order
type Tee []dirshell.Sink

func NewTee(sinks ...dirshell.Sink) Tee {
	return Tee(sinks)
}

func (t Tee) Echo(c byte) {
	for _, s := range t {
		s.Echo(c)
	}
}

func (t Tee) Println(line string) {
	for _, s := range t {
		s.Println(line)
	}
}

func (t Tee) Clear() {
	for _, s := range t {
		s.Clear()
	}
}

var _ dirshell.Sink = Tee(nil)
