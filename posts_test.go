package main

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	openapi3_routers "github.com/getkin/kin-openapi/routers"
	openapi3_legacy "github.com/getkin/kin-openapi/routers/legacy"
	_ "github.com/motemen/go-loghttp/global"
	"github.com/stretchr/testify/suite"

	"postboard/auth"
	"postboard/storage/in_memory"
	"postboard/storage/models"
)

//go:embed api.yaml
var apiSpec []byte

var ctx = context.Background()

const (
	baseUrl    = "http://localhost:8080"
	testSecret = "test-signing-secret"

	lindaId = "5d713995b721c3bb38c1f5d0"
	markId  = "5d713a66ec8f2b88b8f830b8"
)

func TestAPI(t *testing.T) {
	suite.Run(t, &APISuite{})
}

type APISuite struct {
	suite.Suite

	client        http.Client
	apiSpecRouter openapi3_routers.Router
	storage       *in_memory.InMemoryStorage
	issuer        *auth.JWTVerifier
	lindaToken    string
	markToken     string
}

func (s *APISuite) SetupSuite() {
	s.storage = in_memory.CreateInMemoryStorage()
	s.storage.AddUser(models.User{Id: lindaId, Name: "Linda"})
	s.storage.AddUser(models.User{Id: markId, Name: "Mark"})

	s.issuer = auth.NewJWTVerifier([]byte(testSecret))
	var err error
	s.lindaToken, err = s.issuer.Generate(lindaId, time.Hour)
	s.Require().NoError(err)
	s.markToken, err = s.issuer.Generate(markId, time.Hour)
	s.Require().NoError(err)

	gate := auth.NewGate(auth.NewJWTVerifier([]byte(testSecret)))
	srv := CreateServer(s.storage, gate)
	go func() {
		log.Printf("Start serving on %s", srv.Addr)
		log.Fatal(srv.ListenAndServe())
	}()
	s.waitForServer()

	spec, err := openapi3.NewLoader().LoadFromData(apiSpec)
	s.Require().NoError(err)
	s.Require().NoError(spec.Validate(ctx))
	router, err := openapi3_legacy.NewRouter(spec)
	s.Require().NoError(err)
	s.apiSpecRouter = router
	s.client.Transport = s.specValidating(http.DefaultTransport)
}

func (s *APISuite) waitForServer() {
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseUrl + "/maintenance/ping")
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	s.Require().FailNow("server did not come up")
}

func (s *APISuite) specValidating(transport http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		log.Println("Send HTTP request:")
		reqBody := s.printReq(req)

		// validate request
		route, params, err := s.apiSpecRouter.FindRoute(req)
		s.Require().NoError(err)
		reqDescriptor := &openapi3filter.RequestValidationInput{
			Request:     req,
			PathParams:  params,
			QueryParams: req.URL.Query(),
			Route:       route,
		}
		s.Require().NoError(openapi3filter.ValidateRequest(ctx, reqDescriptor))

		// do request
		req.Body = io.NopCloser(bytes.NewReader(reqBody))
		resp, err := transport.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		log.Println("Got HTTP response:")
		respBody := s.printResp(resp)

		// Validate response against OpenAPI spec
		s.Require().NoError(openapi3filter.ValidateResponse(ctx, &openapi3filter.ResponseValidationInput{
			RequestValidationInput: reqDescriptor,
			Status:                 resp.StatusCode,
			Header:                 resp.Header,
			Body:                   io.NopCloser(bytes.NewReader(respBody)),
		}))

		return resp, nil
	})
}

func (s *APISuite) printReq(req *http.Request) []byte {
	body := s.readAll(req.Body)

	req.Body = io.NopCloser(bytes.NewReader(body))
	s.Require().NoError(req.Write(os.Stdout))
	fmt.Println()

	req.Body = io.NopCloser(bytes.NewReader(body))
	return body
}

func (s *APISuite) printResp(resp *http.Response) []byte {
	body := s.readAll(resp.Body)

	resp.Body = io.NopCloser(bytes.NewReader(body))
	s.Require().NoError(resp.Write(os.Stdout))
	fmt.Println()

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return body
}

func (s *APISuite) readAll(in io.Reader) []byte {
	if in == nil {
		return nil
	}
	data, err := io.ReadAll(in)
	s.Require().NoError(err)
	return data
}

type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (fn RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return fn(req)
}

type post struct {
	Id     string    `json:"id"`
	Text   string    `json:"text"`
	Name   string    `json:"name"`
	UserId string    `json:"user"`
	Date   time.Time `json:"date"`
}

type message struct {
	Msg string `json:"msg"`
}

func (s *APISuite) doRequest(method, url, token string, body string) *http.Response {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	s.Require().NoError(err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *APISuite) createPost(token, text string) post {
	resp := s.doRequest("POST", baseUrl+"/api/posts", token, fmt.Sprintf("{\"text\": %q}", text))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var p post
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&p))
	return p
}

// --------------- // TESTS // --------------- //

func (s *APISuite) TestCreateAndGetPost() {
	created := s.createPost(s.lindaToken, "hello")
	s.Require().NotEmpty(created.Id)
	s.Require().Equal("hello", created.Text)
	s.Require().Equal("Linda", created.Name)
	s.Require().Equal(lindaId, created.UserId)
	s.Require().False(created.Date.IsZero())

	resp := s.doRequest("GET", baseUrl+"/api/posts/"+created.Id, s.markToken, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var got post
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&got))
	s.Require().Equal(created.Id, got.Id)
	s.Require().Equal("hello", got.Text)
	s.Require().Equal(lindaId, got.UserId)
}

func (s *APISuite) TestCreatePostEmptyText() {
	resp := s.doRequest("POST", baseUrl+"/api/posts", s.lindaToken, "{\"text\": \"   \"}")
	s.Require().Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *APISuite) TestUpdatePost() {
	created := s.createPost(s.lindaToken, "before")

	resp := s.doRequest("PUT", baseUrl+"/api/posts/"+created.Id, s.lindaToken, "{\"text\": \"after\"}")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var updated struct {
		Post post   `json:"post"`
		Msg  string `json:"msg"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&updated))
	s.Require().Equal("after", updated.Post.Text)
	s.Require().Equal("Post Updated", updated.Msg)
	s.Require().Equal(lindaId, updated.Post.UserId)
}

func (s *APISuite) TestUpdatePostEmptyTextLeavesStored() {
	created := s.createPost(s.lindaToken, "keep me")

	resp := s.doRequest("PUT", baseUrl+"/api/posts/"+created.Id, s.lindaToken, "{\"text\": \"\"}")
	s.Require().Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.doRequest("GET", baseUrl+"/api/posts/"+created.Id, s.lindaToken, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var got post
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&got))
	s.Require().Equal("keep me", got.Text)
}

func (s *APISuite) TestUpdatePostByAnotherUserAllowed() {
	created := s.createPost(s.lindaToken, "editable by anyone")

	resp := s.doRequest("PUT", baseUrl+"/api/posts/"+created.Id, s.markToken, "{\"text\": \"edited by Mark\"}")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp = s.doRequest("GET", baseUrl+"/api/posts/"+created.Id, s.lindaToken, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var got post
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&got))
	s.Require().Equal("edited by Mark", got.Text)
	s.Require().Equal(lindaId, got.UserId)
}

func (s *APISuite) TestUpdateMissingPost() {
	resp := s.doRequest("PUT", baseUrl+"/api/posts/no-such-post", s.lindaToken, "{\"text\": \"whatever\"}")
	s.Require().Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *APISuite) TestDeleteByNonOwnerForbidden() {
	created := s.createPost(s.lindaToken, "mine")

	resp := s.doRequest("DELETE", baseUrl+"/api/posts/"+created.Id, s.markToken, "")
	s.Require().Equal(http.StatusForbidden, resp.StatusCode)
	var m message
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&m))
	s.Require().Equal("User not authorized", m.Msg)

	// still retrievable afterwards
	resp = s.doRequest("GET", baseUrl+"/api/posts/"+created.Id, s.lindaToken, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
}

func (s *APISuite) TestDeleteByOwner() {
	created := s.createPost(s.lindaToken, "short lived")

	resp := s.doRequest("DELETE", baseUrl+"/api/posts/"+created.Id, s.lindaToken, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var m message
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&m))
	s.Require().Equal("post removed", m.Msg)

	resp = s.doRequest("GET", baseUrl+"/api/posts/"+created.Id, s.lindaToken, "")
	s.Require().Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *APISuite) TestMalformedIdIsNotFound() {
	resp := s.doRequest("GET", baseUrl+"/api/posts/not-a-real-id", s.lindaToken, "")
	s.Require().Equal(http.StatusNotFound, resp.StatusCode)

	resp = s.doRequest("DELETE", baseUrl+"/api/posts/not-a-real-id", s.lindaToken, "")
	s.Require().Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *APISuite) TestListOrderedNewestFirst() {
	p1 := s.createPost(s.lindaToken, "first")
	p2 := s.createPost(s.markToken, "second")
	p3 := s.createPost(s.lindaToken, "third")

	resp := s.doRequest("GET", baseUrl+"/api/posts", s.lindaToken, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var posts []post
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&posts))

	positions := map[string]int{}
	for i, p := range posts {
		positions[p.Id] = i
	}
	s.Require().Contains(positions, p1.Id)
	s.Require().Contains(positions, p2.Id)
	s.Require().Contains(positions, p3.Id)
	s.Require().Less(positions[p3.Id], positions[p2.Id])
	s.Require().Less(positions[p2.Id], positions[p1.Id])
}

func (s *APISuite) TestMissingToken() {
	resp := s.doRequest("GET", baseUrl+"/api/posts", "", "")
	s.Require().Equal(http.StatusUnauthorized, resp.StatusCode)
	var m message
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&m))
	s.Require().Equal("missing token", m.Msg)
}

func (s *APISuite) TestInvalidToken() {
	resp := s.doRequest("GET", baseUrl+"/api/posts", "not-a-jwt", "")
	s.Require().Equal(http.StatusUnauthorized, resp.StatusCode)
	var m message
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&m))
	s.Require().Equal("invalid token", m.Msg)
}

func (s *APISuite) TestExpiredToken() {
	expired, err := s.issuer.Generate(lindaId, -time.Hour)
	s.Require().NoError(err)

	resp := s.doRequest("GET", baseUrl+"/api/posts", expired, "")
	s.Require().Equal(http.StatusUnauthorized, resp.StatusCode)
	var m message
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&m))
	s.Require().Equal("expired token", m.Msg)
}
