package providers

import (
	"fmt"
	"storyplayer/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}

	g := cv.conf.Gesture
	if g.RetreatZone < 0 || g.RetreatZone > 1 {
		return fmt.Errorf("invalid config: gesture.retreatZone must be within [0,1], got %v", g.RetreatZone)
	}
	if g.SwitchDistance > 0 && g.CloseDistance > 0 && g.SwitchDistance > g.CloseDistance {
		return fmt.Errorf("invalid config: gesture.switchDistance (%v) must not exceed gesture.closeDistance (%v)", g.SwitchDistance, g.CloseDistance)
	}
	if cv.conf.Preload.StoriesAhead < 0 || cv.conf.Preload.NextAuthorStories < 0 {
		return fmt.Errorf("invalid config: preload lookahead counts must not be negative")
	}
	return nil
}
