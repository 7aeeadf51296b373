// Copyright 2026 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package skk implements the candidate dictionaries of an SKK Japanese input
// method in pure Go.
//
// Given a phonetic key, a Library returns an ordered list of conversion
// candidates merged from several dictionaries:
//  1. A UserDictionary holding the words registered by the user. It is
//     persisted as a jisyo file and an optional JSON rank file.
//  2. StaticDictionary instances loaded from jisyo files such as
//     SKK-JISYO.L. The files may be gzip or dictzip compressed.
//  3. An optional RemoteDictionary querying an skkserv dictionary server.
//
// Every dictionary is wrapped in a NumberDictionary so that keys containing
// digits match entries with numeric placeholders.
//
// Jisyo files have two sections, okuri-ari for inflected words and
// okuri-nasi for everything else. Each entry line has the form:
//
//	KEY /CANDIDATE1/CANDIDATE2;annotation/
//
// More info on the file format can be found at this URL:
// https://skk-dev.github.io/dict/
package skk
