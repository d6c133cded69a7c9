package opentdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fourQuestions = `{"response_code":0,"results":[
	{"category":"Science","question":"What is H&lt;sub&gt;2&lt;/sub&gt;O?","correct_answer":"Water","incorrect_answers":["Salt","Sugar","Sand"]},
	{"category":"Art","question":"Who painted &quot;Mona Lisa&quot;?","correct_answer":"Leonardo","incorrect_answers":["Picasso","Monet","Dal&iacute;"]},
	{"category":"Geo","question":"Capital of Nigeria?","correct_answer":"Abuja","incorrect_answers":["Lagos","Kano","Ibadan"]},
	{"category":"Math","question":"2+2?","correct_answer":"4","incorrect_answers":["3","5","22"]}]}`

func TestFetchQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "4", r.URL.Query().Get("amount"))
		assert.Equal(t, "easy", r.URL.Query().Get("difficulty"))
		assert.Equal(t, "multiple", r.URL.Query().Get("type"))
		assert.Equal(t, "17", r.URL.Query().Get("category"))
		_, _ = w.Write([]byte(fourQuestions))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api.php", time.Second, nil)
	qs, err := c.FetchQuestions(context.Background(), 17)
	require.NoError(t, err)
	require.Len(t, qs, 4)
	assert.Equal(t, `Who painted "Mona Lisa"?`, qs[1].Question)
	assert.Equal(t, "Dalí", qs[1].IncorrectAnswers[2])
}

func TestFetchQuestions_RandomCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("category"))
		_, _ = w.Write([]byte(fourQuestions))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, nil).FetchQuestions(context.Background(), 0)
	assert.NoError(t, err)
}

func TestFetchQuestions_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response_code":1,"results":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, nil).FetchQuestions(context.Background(), 9)
	assert.Error(t, err)
}
