package cfg

import (
	"testing"
	"time"

	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/m-mizutani/gt"
)

func setRequired(t *testing.T) {
	t.Setenv("POSTGRES_USER", "app")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "shop")
	t.Setenv("KAFKA_BROKERS", "kafka:9092, kafka2:9092")
	t.Setenv("KAFKA_TOPIC", "recommendations")
	t.Setenv("GEMINI_PROJECT", "demo")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	c, err := Load(logger.Nop{})
	gt.NoError(t, err).Required()

	gt.Value(t, c.Kafka.Brokers).Equal([]string{"kafka:9092", "kafka2:9092"})
	gt.Value(t, c.LLM.Provider).Equal(ProviderGemini)
	gt.Value(t, c.LLM.EmbeddingDimension).Equal(768)
	gt.Value(t, c.Qdrant.VectorSize).Equal(uint64(768))
	gt.Bool(t, c.Qdrant.Enabled()).False()
	gt.Value(t, c.Recommend.RankerBackend).Equal(RankerAuto)
	gt.Value(t, c.Recommend.ProfileStrategy).Equal("mean")
	gt.Value(t, c.Recommend.DefaultLimit).Equal(10)
	gt.Value(t, c.Recommend.FollowUpWeight).Equal(0.0)
	gt.Value(t, c.Session.Backend).Equal(SessionMemory)
	gt.Value(t, c.Session.CookieName).Equal("session_id")
	gt.Value(t, c.Http.CORSAllowedOrigins).Equal([]string{"*"})
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LLM_PROVIDER", "none")
	t.Setenv("GEMINI_PROJECT", "")
	t.Setenv("EMBEDDING_DIMENSION", "3")
	t.Setenv("QDRANT_HOST", "qdrant")
	t.Setenv("RANKER_BACKEND", "Qdrant")
	t.Setenv("PROFILE_STRATEGY", "latest")
	t.Setenv("CHAT_FOLLOWUP_WEIGHT", "0.25")
	t.Setenv("SEARCH_TIMEOUT", "2s")
	t.Setenv("SESSION_BACKEND", "redis")

	c, err := Load(logger.Nop{})
	gt.NoError(t, err).Required()

	gt.Bool(t, c.LLM.Enabled()).False()
	gt.Value(t, c.Qdrant.VectorSize).Equal(uint64(3))
	gt.Bool(t, c.Qdrant.Enabled()).True()
	gt.Value(t, c.Recommend.RankerBackend).Equal(RankerQdrant)
	gt.Value(t, c.Recommend.ProfileStrategy).Equal("latest")
	gt.Value(t, c.Recommend.FollowUpWeight).Equal(0.25)
	gt.Value(t, c.Recommend.SearchTimeout).Equal(2 * time.Second)
	gt.Value(t, c.Session.Backend).Equal(SessionRedis)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"gemini without project": {"GEMINI_PROJECT", ""},
		"unknown provider":       {"LLM_PROVIDER", "openai"},
		"bad dimension":          {"EMBEDDING_DIMENSION", "0"},
		"unknown ranker":         {"RANKER_BACKEND", "faiss"},
		"unknown strategy":       {"PROFILE_STRATEGY", "median"},
		"negative weight":        {"CHAT_FOLLOWUP_WEIGHT", "-1"},
		"negative limit":         {"RECOMMEND_MAX_LIMIT", "-5"},
		"unknown session store":  {"SESSION_BACKEND", "memcached"},
		"bad duration":           {"STORAGE_TIMEOUT", "soon"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(env[0], env[1])

			_, err := Load(logger.Nop{})
			gt.Error(t, err)
		})
	}

	t.Run("missing kafka brokers", func(t *testing.T) {
		setRequired(t)
		t.Setenv("KAFKA_BROKERS", "")
		_, err := Load(logger.Nop{})
		gt.Error(t, err)
	})
}

func TestParseIntEnv(t *testing.T) {
	t.Setenv("SOME_INT", "x")
	_, err := parseIntEnv("SOME_INT", 1)
	gt.Error(t, err).Is(e.ErrIncorrectEnvVariable)

	v, err := parseIntEnv("MISSING_INT", 7)
	gt.NoError(t, err).Required()
	gt.Value(t, v).Equal(7)
}

func TestSplitList(t *testing.T) {
	gt.Value(t, splitList(" a, ,b,")).Equal([]string{"a", "b"})
	gt.Array(t, splitList("")).Length(0)
}
