package rpc

import (
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ConsenSysQuorum/eea-gateway/eea"
	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
)

// codec is json2 with Ethereum style method names: "eea_sendRawTransaction"
// is served by the SendRawTransaction method of the service registered as
// "eea".
type codec struct {
	*json2.Codec
}

func newCodec() *codec {
	return &codec{Codec: json2.NewCodec()}
}

func (c *codec) NewRequest(r *http.Request) rpc.CodecRequest {
	return &codecRequest{CodecRequest: c.Codec.NewRequest(r)}
}

type codecRequest struct {
	rpc.CodecRequest
}

func (c *codecRequest) Method() (string, error) {
	m, err := c.CodecRequest.Method()
	if err != nil {
		return "", err
	}
	return serviceMethod(m), nil
}

// ReadRequest reports params that do not fit the method's arguments as
// invalid params rather than as an invalid request.
func (c *codecRequest) ReadRequest(args interface{}) error {
	if err := c.CodecRequest.ReadRequest(args); err != nil {
		return eea.ErrInvalidParams
	}
	return nil
}

// serviceMethod turns "ns_fooBar" into "ns.FooBar". Names without a
// namespace are passed through and rejected by the server.
func serviceMethod(method string) string {
	i := strings.IndexByte(method, '_')
	if i <= 0 || i == len(method)-1 {
		return method
	}
	name := method[i+1:]
	r, size := utf8.DecodeRuneInString(name)
	return method[:i] + "." + string(unicode.ToUpper(r)) + name[size:]
}
