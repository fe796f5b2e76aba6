package workflow

import (
	"github.com/parishworks/sexton/internal/conversions"
	"github.com/parishworks/sexton/internal/queue"
)

// Register adds the conversion workflows and their standalone task variants
// to the registry.
func Register(reg *queue.Registry, rt *Runtime) error {
	defs := []queue.Definition{
		{
			Kind: KindConvertPage,
			Steps: []queue.Step{
				rt.beginStep(conversions.KindPage, TaskBeginPageConversion),
				rt.waitStep(conversions.KindPage, TaskWaitForPageConversion),
			},
		},
		{
			Kind: KindCreatePostFromVideo,
			Steps: []queue.Step{
				rt.beginStep(conversions.KindPost, TaskBeginPostCreation),
				rt.waitStep(conversions.KindPost, TaskWaitForPostCreation),
			},
		},
		{
			Kind:  TaskBeginPageConversion,
			Steps: []queue.Step{rt.beginStep(conversions.KindPage, TaskBeginPageConversion)},
		},
		{
			Kind:  TaskWaitForPageConversion,
			Steps: []queue.Step{rt.waitStep(conversions.KindPage, TaskWaitForPageConversion)},
		},
		{
			Kind:  TaskBeginPostCreation,
			Steps: []queue.Step{rt.beginStep(conversions.KindPost, TaskBeginPostCreation)},
		},
		{
			Kind:  TaskWaitForPostCreation,
			Steps: []queue.Step{rt.waitStep(conversions.KindPost, TaskWaitForPostCreation)},
		},
	}

	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}

	return nil
}
