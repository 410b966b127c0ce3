package repository

const (
	createJobQuery = `INSERT INTO transcoding_jobs (job_id, source_file_id, status, progress, input_location, output_prefix)
					VALUES ($1, $2, $3, 0, $4, $5) RETURNING *`

	// The subselect picks one pending row with SKIP LOCKED so concurrent
	// workers never block on, or double-claim, the same job. The outer
	// status guard makes the claim conditional rather than select-then-update.
	claimNextJobQuery = `UPDATE transcoding_jobs
					SET status = 'processing', progress = 0, started_at = now(), updated_at = now()
					WHERE job_id = (
						SELECT job_id FROM transcoding_jobs
						WHERE status = 'pending'
						ORDER BY created_at
						FOR UPDATE SKIP LOCKED
						LIMIT 1
					) AND status = 'pending'
					RETURNING *`

	// GREATEST keeps progress monotonic even if a late write arrives out of
	// order; the status guard makes writes after a reap a silent no-op.
	updateProgressQuery = `UPDATE transcoding_jobs
					SET progress = GREATEST(progress, $2), updated_at = now()
					WHERE job_id = $1 AND status = 'processing'`

	markCompletedQuery = `UPDATE transcoding_jobs
					SET status = 'completed', progress = 100, manifest_location = $2,
					    completed_at = now(), updated_at = now()
					WHERE job_id = $1 AND status = 'processing'`

	markFailedQuery = `UPDATE transcoding_jobs
					SET status = 'failed', error_detail = $2,
					    completed_at = now(), updated_at = now()
					WHERE job_id = $1 AND status = 'processing'`

	getJobByIDQuery = `SELECT job_id, source_file_id, status, progress, input_location, output_prefix,
					manifest_location, error_detail, created_at, started_at, completed_at, updated_at
					FROM transcoding_jobs WHERE job_id = $1`

	getTotalJobsQuery = `SELECT COUNT(job_id) FROM transcoding_jobs`

	getJobsQuery = `SELECT job_id, source_file_id, status, progress, input_location, output_prefix,
					manifest_location, error_detail, created_at, started_at, completed_at, updated_at
					FROM transcoding_jobs ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	reapStaleJobsQuery = `UPDATE transcoding_jobs
					SET status = 'pending', progress = 0, started_at = NULL, updated_at = now()
					WHERE status = 'processing' AND updated_at < now() - make_interval(secs => $1)`
)
