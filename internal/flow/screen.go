// internal/flow/screen.go
package flow

import (
	"fmt"
)

// Screen is the closed set of places a session can be. Code that switches
// over it must handle every value.
type Screen int

const (
	ScreenWelcome Screen = iota
	ScreenOnboarding
	ScreenGenerating
	ScreenDashboard
	ScreenDiet
	ScreenChat
	ScreenProgress
	ScreenProfile
)

var screenNames = map[Screen]string{
	ScreenWelcome:    "welcome",
	ScreenOnboarding: "onboarding",
	ScreenGenerating: "generating",
	ScreenDashboard:  "dashboard",
	ScreenDiet:       "diet",
	ScreenChat:       "chat",
	ScreenProgress:   "progress",
	ScreenProfile:    "profile",
}

// Screens lists every screen in declaration order.
func Screens() []Screen {
	return []Screen{
		ScreenWelcome,
		ScreenOnboarding,
		ScreenGenerating,
		ScreenDashboard,
		ScreenDiet,
		ScreenChat,
		ScreenProgress,
		ScreenProfile,
	}
}

// LateralScreens are the bottom navigation targets, in display order.
func LateralScreens() []Screen {
	return []Screen{ScreenDashboard, ScreenDiet, ScreenChat, ScreenProgress, ScreenProfile}
}

func (s Screen) String() string {
	if name, ok := screenNames[s]; ok {
		return name
	}
	return fmt.Sprintf("screen(%d)", int(s))
}

// Lateral reports whether s is reachable from the bottom navigation once a
// plan exists.
func (s Screen) Lateral() bool {
	switch s {
	case ScreenDashboard, ScreenDiet, ScreenChat, ScreenProgress, ScreenProfile:
		return true
	case ScreenWelcome, ScreenOnboarding, ScreenGenerating:
		return false
	}
	return false
}

// Label is the bottom navigation caption.
func (s Screen) Label() string {
	switch s {
	case ScreenDashboard:
		return "Início"
	case ScreenDiet:
		return "Dieta"
	case ScreenChat:
		return "Chat"
	case ScreenProgress:
		return "Evolução"
	case ScreenProfile:
		return "Perfil"
	case ScreenWelcome:
		return "Boas-vindas"
	case ScreenOnboarding:
		return "Cadastro"
	case ScreenGenerating:
		return "Gerando"
	}
	return s.String()
}

func ParseScreen(name string) (Screen, error) {
	for screen, screenName := range screenNames {
		if screenName == name {
			return screen, nil
		}
	}
	return 0, fmt.Errorf("unknown screen %q", name)
}

func (s Screen) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
