//go:build js && wasm

package main

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/EvegeniyNekrasov/Nexo/internal/document"
	"github.com/EvegeniyNekrasov/Nexo/internal/persist"
)

// localStorageStore keeps one scene per document in window.localStorage.
type localStorageStore struct {
	storage js.Value
}

func (l localStorageStore) Get(_ context.Context, docID string) (document.Scene, bool, error) {
	v := l.storage.Call("getItem", persist.LocalKey(docID))
	if v.IsNull() || v.IsUndefined() {
		return document.EmptyScene(), false, nil
	}
	scene, ok := persist.DecodeEntry([]byte(v.String()))
	return scene, ok, nil
}

func (l localStorageStore) Put(_ context.Context, docID string, scene document.Scene) (err error) {
	data, err := persist.EncodeEntry(scene)
	if err != nil {
		return err
	}
	// setItem throws QuotaExceededError when storage is full.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("localStorage setItem: %v", r)
		}
	}()
	l.storage.Call("setItem", persist.LocalKey(docID), string(data))
	return nil
}

func (l localStorageStore) Delete(_ context.Context, docID string) error {
	l.storage.Call("removeItem", persist.LocalKey(docID))
	return nil
}
