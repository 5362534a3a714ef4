// Package capture abstracts the audio input boundary.
//
// A Recorder starts a capture stream and delivers fixed-size floating-point
// sample blocks on a dedicated callback goroutine; errors surface through a
// separate error callback so the recorder can recover them into a session
// transition. The ALSA implementation shells out to arecord; tests substitute
// their own Recorder.
//
// DeviceMonitor watches udev netlink events for sound device removal and
// feeds the same error callback path, so a yanked USB microphone and a dying
// stream look identical to the recovery logic.
package capture
