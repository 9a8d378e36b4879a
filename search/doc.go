// Copyright 2025 EcoInsight Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search provides hybrid semantic and lexical retrieval over artifacts.
//
// The Retriever type prefers semantic search using vector embeddings and
// degrades to a case-insensitive lexical scan when the semantic path is
// unavailable: embedding failure, an unindexed collection, a similarity-search
// error, or zero similarity hits. An empty collection short-circuits to an
// explicit empty outcome without trying either path.
//
// Every outcome carries the mode that produced it, so callers can surface
// whether results are ranked by similarity score or matched lexically.
package search
