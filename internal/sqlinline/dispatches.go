package sqlinline

const QInsertDispatch = `--sql 3f1c2b6e-5a0d-4e8a-9c47-2b8f1d6a9e04
insert into dispatches (id, op, provider, model, status, failure_kind, error_message, elapsed_ms, created_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, nullif($6::text, ''), nullif($7::text, ''), $8::bigint, now());
`

const QRecentDispatches = `--sql 9c6d1f20-74ab-4c3e-8f5d-0e2a7b4c9d13
select id, op, provider, model, status, coalesce(failure_kind, ''), coalesce(error_message, ''), elapsed_ms, created_at
from dispatches
order by created_at desc
limit $1::int;
`
