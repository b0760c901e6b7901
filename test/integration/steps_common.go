package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/cucumber/godog"

	"github.com/cedadev/remoteuser/pkg/audit"
	"github.com/cedadev/remoteuser/pkg/config"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	server       *ServerInstance
	response     *http.Response
	responseBody []byte
	cookies      map[string]*http.Cookie
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:      tc,
		cookies: make(map[string]*http.Cookie),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.ResetAudit()
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if s.server != nil {
			s.server.Stop()
			s.server = nil
		}
		return ctx, err
	})

	// Server steps
	sc.Step(`^a server is running$`, s.aServerIsRunning)
	sc.Step(`^a server is running with authenticators "([^"]*)"$`, s.aServerIsRunningWithAuthenticators)
	sc.Step(`^a server is running that does not require authentication$`, s.aServerIsRunningThatDoesNotRequireAuthentication)

	// Request steps
	sc.Step(`^I send "([^"]*)" "([^"]*)"$`, s.iSend)
	sc.Step(`^I send "([^"]*)" "([^"]*)" with headers:$`, s.iSendWithHeaders)
	sc.Step(`^I send "([^"]*)" "([^"]*)" with my session$`, s.iSendWithMySession)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Step(`^the response roles should be "([^"]*)"$`, s.theResponseRolesShouldBe)
	sc.Step(`^the response should have no roles$`, s.theResponseShouldHaveNoRoles)
	sc.Step(`^I should receive a session cookie$`, s.iShouldReceiveASessionCookie)
	sc.Step(`^I should not receive a session cookie$`, s.iShouldNotReceiveASessionCookie)
	sc.Step(`^the session cookie should be cleared$`, s.theSessionCookieShouldBeCleared)

	// Audit steps
	sc.Step(`^(\d+) audit messages? with id "([^"]*)" should be stored$`, s.auditMessagesShouldBeStored)
}

// Server steps

func (s *StepsContext) startServer(cfg ServerConfig) error {
	instance, err := StartServer(s.tc, cfg)
	if err != nil {
		return err
	}
	s.server = instance
	return nil
}

func (s *StepsContext) aServerIsRunning() error {
	return s.startServer(DefaultServerConfig())
}

func (s *StepsContext) aServerIsRunningWithAuthenticators(names string) error {
	cfg := DefaultServerConfig()
	cfg.Authenticators = strings.Split(names, ",")
	return s.startServer(cfg)
}

func (s *StepsContext) aServerIsRunningThatDoesNotRequireAuthentication() error {
	cfg := DefaultServerConfig()
	cfg.RequireAuthentication = false
	return s.startServer(cfg)
}

// Request steps

func (s *StepsContext) do(req *http.Request) error {
	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	s.response = resp

	s.responseBody, err = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return err
	}

	for _, c := range resp.Cookies() {
		s.cookies[c.Name] = c
	}
	return nil
}

func (s *StepsContext) newRequest(method, path string) (*http.Request, error) {
	if s.server == nil {
		return nil, fmt.Errorf("no server is running")
	}
	return http.NewRequest(method, s.server.ServerURL+path, nil)
}

func (s *StepsContext) iSend(method, path string) error {
	req, err := s.newRequest(method, path)
	if err != nil {
		return err
	}
	return s.do(req)
}

func (s *StepsContext) iSendWithHeaders(method, path string, table *godog.Table) error {
	req, err := s.newRequest(method, path)
	if err != nil {
		return err
	}
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("header rows need a name and a value")
		}
		req.Header.Add(row.Cells[0].Value, row.Cells[1].Value)
	}
	return s.do(req)
}

func (s *StepsContext) iSendWithMySession(method, path string) error {
	cookie, ok := s.cookies[config.Default().SessionCookieName]
	if !ok || cookie.Value == "" {
		return fmt.Errorf("no session cookie has been received")
	}

	req, err := s.newRequest(method, path)
	if err != nil {
		return err
	}
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	return s.do(req)
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expected int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) responseJSON() (map[string]interface{}, error) {
	var body map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w: %s", err, string(s.responseBody))
	}
	return body, nil
}

func (s *StepsContext) theResponseFieldShouldBe(field, expected string) error {
	body, err := s.responseJSON()
	if err != nil {
		return err
	}
	if got := fmt.Sprint(body[field]); got != expected {
		return fmt.Errorf("expected %s to be %q, got %q", field, expected, got)
	}
	return nil
}

func (s *StepsContext) responseRoles() ([]string, error) {
	body, err := s.responseJSON()
	if err != nil {
		return nil, err
	}
	raw, ok := body["roles"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("response has no roles array: %s", string(s.responseBody))
	}
	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		roles = append(roles, fmt.Sprint(r))
	}
	return roles, nil
}

func (s *StepsContext) theResponseRolesShouldBe(expected string) error {
	roles, err := s.responseRoles()
	if err != nil {
		return err
	}
	want := strings.Split(expected, ",")
	if !reflect.DeepEqual(roles, want) {
		return fmt.Errorf("expected roles %v, got %v", want, roles)
	}
	return nil
}

func (s *StepsContext) theResponseShouldHaveNoRoles() error {
	roles, err := s.responseRoles()
	if err != nil {
		return err
	}
	if len(roles) != 0 {
		return fmt.Errorf("expected no roles, got %v", roles)
	}
	return nil
}

func (s *StepsContext) sessionCookie() *http.Cookie {
	name := config.Default().SessionCookieName
	for _, c := range s.response.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (s *StepsContext) iShouldReceiveASessionCookie() error {
	c := s.sessionCookie()
	if c == nil || c.Value == "" {
		return fmt.Errorf("expected a session cookie in the response")
	}
	if !c.HttpOnly {
		return fmt.Errorf("session cookie is not HttpOnly")
	}
	return nil
}

func (s *StepsContext) iShouldNotReceiveASessionCookie() error {
	if c := s.sessionCookie(); c != nil {
		return fmt.Errorf("expected no session cookie, got %q", c.Value)
	}
	return nil
}

func (s *StepsContext) theSessionCookieShouldBeCleared() error {
	c := s.sessionCookie()
	if c == nil {
		return fmt.Errorf("expected the session cookie to be cleared")
	}
	if c.MaxAge >= 0 || c.Value != "" {
		return fmt.Errorf("session cookie was not cleared: %v", c)
	}
	return nil
}

// Audit steps

func (s *StepsContext) auditMessagesShouldBeStored(expected int, msgid string) error {
	count, err := audit.NewStore(s.tc.RawDB).Count(context.Background(), msgid)
	if err != nil {
		return err
	}
	if count != expected {
		return fmt.Errorf("expected %d %q audit messages, got %d", expected, msgid, count)
	}
	return nil
}
