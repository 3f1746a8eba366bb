package esutil

import "net/http"

type TransportAction = func(req *http.Request) (*http.Response, error)

// MockEsTransport records requests and replays either actions or prepared responses, in order
type MockEsTransport struct {
	ReceivedHttpRequests  []*http.Request
	PreparedHttpResponses []*http.Response
	Actions               []TransportAction
}

func (m *MockEsTransport) Perform(req *http.Request) (*http.Response, error) {
	m.ReceivedHttpRequests = append(m.ReceivedHttpRequests, req)

	if len(m.Actions) != 0 {
		action := m.Actions[0]
		if action != nil {
			m.Actions = m.Actions[1:]
			return action(req)
		}
	}

	if len(m.PreparedHttpResponses) != 0 {
		res := m.PreparedHttpResponses[0]
		m.PreparedHttpResponses = m.PreparedHttpResponses[1:]

		return res, nil
	}

	return nil, nil
}
