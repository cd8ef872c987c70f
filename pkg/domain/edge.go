package domain

import (
	"strconv"
	"strings"
)

// Well-known handle names.
const (
	HandlePrompt     = "prompt"
	HandleImage      = "image"
	HandleVideo      = "video"
	HandleResult     = "result"
	HandleMedia      = "media"
	HandleFirstFrame = "firstFrame"
	HandleLastFrame  = "lastFrame"
)

// Edge is a typed connection from one node's output handle to another
// node's input handle.
type Edge struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`
}

// HandleType is the payload class a handle carries.
type HandleType string

const (
	HandleTypePrompt HandleType = "prompt"
	HandleTypeImage  HandleType = "image"
	HandleTypeVideo  HandleType = "video"
	// HandleTypeMedia accepts or produces any media payload. "result" and
	// "media" handles fall here.
	HandleTypeMedia HandleType = "media"
)

// TypeOfHandle classifies a handle name. Indexed handles (video1, video2, ...)
// classify by their prefix.
func TypeOfHandle(name string) HandleType {
	switch name {
	case HandlePrompt:
		return HandleTypePrompt
	case HandleImage, HandleFirstFrame, HandleLastFrame:
		return HandleTypeImage
	case HandleVideo:
		return HandleTypeVideo
	}
	if strings.HasPrefix(name, HandleVideo) {
		if _, err := strconv.Atoi(name[len(HandleVideo):]); err == nil {
			return HandleTypeVideo
		}
	}
	return HandleTypeMedia
}

// HandleIndex returns the numeric suffix of an indexed handle (video1 -> 1).
// Handles without a suffix sort last; ordering among them is insertion order.
func HandleIndex(name string) int {
	if strings.HasPrefix(name, HandleVideo) {
		if n, err := strconv.Atoi(name[len(HandleVideo):]); err == nil {
			return n
		}
	}
	return int(^uint(0) >> 1)
}

// CompatibleHandles reports whether an edge from sourceHandle to targetHandle
// is allowed. Prompt outputs feed only prompt inputs; media payloads may feed
// same-typed or wildcard inputs.
func CompatibleHandles(sourceHandle, targetHandle string) bool {
	src := TypeOfHandle(sourceHandle)
	dst := TypeOfHandle(targetHandle)

	if src == HandleTypePrompt || dst == HandleTypePrompt {
		return src == dst
	}
	if src == HandleTypeMedia || dst == HandleTypeMedia {
		return true
	}
	return src == dst
}
