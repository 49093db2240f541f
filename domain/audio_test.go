package domain

import "testing"

func TestAudioPreference_VolumeRules(t *testing.T) {
	a := DefaultAudio()
	if !a.Muted || a.Volume != DefaultVolume {
		t.Fatalf("unexpected default: %#v", a)
	}

	a = a.WithVolume(0)
	if !a.Muted || !a.Silent() {
		t.Fatalf("volume 0 must force muted: %#v", a)
	}

	a = a.WithVolume(55)
	if a.Muted || a.Volume != 55 {
		t.Fatalf("raising volume must unmute: %#v", a)
	}

	a = a.WithVolume(180)
	if a.Volume != MaxVolume {
		t.Fatalf("volume must clamp at %d, got %d", MaxVolume, a.Volume)
	}

	n := AudioPreference{Muted: false, Volume: -4}.Normalize()
	if !n.Muted || n.Volume != 0 {
		t.Fatalf("normalize must clamp and mute: %#v", n)
	}
}

func TestLikeState_ToggledClampsAtZero(t *testing.T) {
	s := LikeState{Liked: true, Count: 0}.Toggled()
	if s.Liked || s.Count != 0 {
		t.Fatalf("unlike must clamp at zero: %#v", s)
	}
	s = LikeState{Liked: false, Count: 5}.Toggled()
	if !s.Liked || s.Count != 6 {
		t.Fatalf("like must add one: %#v", s)
	}
}
