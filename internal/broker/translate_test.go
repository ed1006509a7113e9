package broker

import (
	"errors"
	"testing"

	"github.com/tidwall/gjson"
)

func TestTranslateHost(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		method string
		params string
		id     string
	}{
		{
			name:   "client started",
			in:     `{"operation":"client_started","config_dir":"/cfg"}`,
			method: "client_started",
			params: `{"config_dir":"/cfg"}`,
		},
		{
			name:   "new view",
			in:     `{"id":"a","operation":"new_view","file_path":"/f"}`,
			method: "new_view",
			params: `{"file_path":"/f"}`,
			id:     "a",
		},
		{
			name:   "new view without file",
			in:     `{"id":"a","operation":"new_view"}`,
			method: "new_view",
			params: `{}`,
			id:     "a",
		},
		{
			name:   "save",
			in:     `{"operation":"save","view_id":"v","file_path":"/f"}`,
			method: "save",
			params: `{"view_id":"v","file_path":"/f"}`,
		},
		{
			name:   "gesture",
			in:     `{"operation":"edit","view_id":"v","method":"undo"}`,
			method: "edit",
			params: `{"method":"undo","view_id":"v","params":{}}`,
		},
		{
			name:   "click",
			in:     `{"operation":"edit","view_id":"v","method":"click","params":[1,2,0,1]}`,
			method: "edit",
			params: `{"method":"click","view_id":"v","params":[1,2,0,1]}`,
		},
		{
			name:   "bare insert text",
			in:     `{"operation":"edit","view_id":"v","method":"insert","params":"a"}`,
			method: "edit",
			params: `{"method":"insert","view_id":"v","params":{"chars":"a"}}`,
		},
		{
			name:   "bare find text",
			in:     `{"operation":"edit","view_id":"v","method":"find","params":"q"}`,
			method: "edit",
			params: `{"method":"find","view_id":"v","params":{"chars":"q","case_sensitive":false}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := translateHost([]byte(tt.in))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Method != tt.method || req.ID != tt.id {
				t.Errorf("expected %s id=%q, got %s id=%q", tt.method, tt.id, req.Method, req.ID)
			}
			if string(req.Params) != tt.params {
				t.Errorf("expected params %s, got %s", tt.params, req.Params)
			}
		})
	}
}

func TestTranslateHostErrors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{`nope`, ErrInvalidEnvelope},
		{`{"view_id":"v"}`, ErrInvalidEnvelope},
		{`{"operation":"edit","view_id":"v"}`, ErrInvalidEnvelope},
		{`{"operation":"rename"}`, ErrUnknownOperation},
	}
	for _, tt := range tests {
		if _, err := translateHost([]byte(tt.in)); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.in, tt.want, err)
		}
	}
}

func TestTranslateCore(t *testing.T) {
	out, method, err := translateCore([]byte(`{"method":"set_style","params":{"id":2,"italic":true}}`))
	if err != nil {
		t.Fatal(err)
	}
	if method != "set_style" {
		t.Errorf("expected set_style, got %s", method)
	}
	r := gjson.ParseBytes(out)
	if r.Get("params").Exists() || r.Get("parameters.id").Int() != 2 || !r.Get("parameters.italic").Bool() {
		t.Errorf("unexpected translation %s", out)
	}

	if _, _, err := translateCore([]byte(`{"id":1,"result":null}`)); !errors.Is(err, ErrInvalidEnvelope) {
		t.Errorf("expected ErrInvalidEnvelope, got %v", err)
	}
}

func TestReplyEnvelope(t *testing.T) {
	out := replyEnvelope(coreRequest{ID: "a", Operation: "new_view"}, gjson.Parse(`"view-id-3"`), nil)
	if string(out) != `{"id":"a","view_id":"view-id-3"}` {
		t.Errorf("unexpected reply %s", out)
	}

	out = replyEnvelope(coreRequest{ID: "b", Operation: "save"}, gjson.Result{}, &RPCError{Code: 1, Message: "no"})
	if string(out) != `{"id":"b","error":"rpc error 1: no"}` {
		t.Errorf("unexpected reply %s", out)
	}
}

func TestResponseError(t *testing.T) {
	if err := responseError([]byte(`{"id":1,"result":"x"}`)); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	var rpcErr *RPCError
	err := responseError([]byte(`{"id":1,"error":{"code":-32601,"message":"method not found"}}`))
	if !errors.As(err, &rpcErr) || rpcErr.Code != -32601 {
		t.Errorf("expected RPCError, got %v", err)
	}
}
