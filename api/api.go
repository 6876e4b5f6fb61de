// Package api provides low-level primitives for implementing interfaces to
// various HTTP APIs.
package api

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"
)

var c = http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		DisableKeepAlives: true,
	},
}

// Get runs a GET request against endpoint. If token is non-empty it is sent
// as a `token` Authorization header.
func Get(endpoint string, token string) (res []byte, statusCode int, err error) {
	log.WithFields(log.Fields{
		"endpoint": endpoint,
		"method":   http.MethodGet,
	}).Debug("making API request")

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not construct API HTTP request")
	}
	req.Close = true
	if token != "" {
		req.Header.Set("Authorization", "token "+token)
	}
	req.Header.Set("Accept", "application/json")

	response, err := c.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, 0, errors.Wrap(err, "API request timed out")
		}
		return nil, 0, errors.Wrap(err, "could not send API HTTP request")
	}
	defer response.Body.Close()

	res, err = io.ReadAll(response.Body)
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not read API HTTP response")
	}

	log.WithField("status", response.StatusCode).Debug("got API response")
	return res, response.StatusCode, nil
}

// GetJSON runs a GET request and unmarshals the response body into v.
func GetJSON(endpoint string, token string, v interface{}) (statusCode int, err error) {
	res, code, err := Get(endpoint, token)
	if err != nil {
		return code, err
	}
	if err := json.Unmarshal(res, v); err != nil {
		return code, errors.Wrap(err, "could not unmarshal JSON API response")
	}
	return code, nil
}

func isTimeout(err error) bool {
	switch e := err.(type) {
	case net.Error:
		return e.Timeout()
	case *url.Error:
		return e.Err == io.EOF
	}
	return false
}
