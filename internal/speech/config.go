package speech

// Default voice for TTS. Change this constant to switch voices.
// Full list: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const DefaultVoice = "en-US-JennyNeural"

// Audio format returned by the synthesizer and expected by the player.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Audio parameters matching the default format.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// Env var names for Azure Speech credentials.
const (
	EnvSpeechKey    = "AZURE_SPEECH_KEY"
	EnvSpeechRegion = "AZURE_SPEECH_REGION"
)

// Prosody defaults. Rate is a multiplier (1.0 = normal speed), pitch a
// relative percentage (0 = the voice's natural pitch).
const (
	DefaultRate  = 1.0
	DefaultPitch = 0.0
)
